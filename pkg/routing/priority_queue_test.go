package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinHeap(t *testing.T) {
	h := NewMinHeap[int32]()
	h.Insert(PriorityQueueNode[int32]{Rank: 3, Item: 30})
	h.Insert(PriorityQueueNode[int32]{Rank: 1, Item: 10})
	h.Insert(PriorityQueueNode[int32]{Rank: 2, Item: 20})

	min, err := h.GetMin()
	assert.NoError(t, err)
	assert.Equal(t, int32(10), min.Item)

	assert.NoError(t, h.DecreaseKey(PriorityQueueNode[int32]{Rank: 0.5, Item: 30}))

	var order []int32
	for h.Size() > 0 {
		node, err := h.ExtractMin()
		assert.NoError(t, err)
		order = append(order, node.Item)
	}
	assert.Equal(t, []int32{30, 10, 20}, order)

	_, err = h.ExtractMin()
	assert.Error(t, err)
}
