package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/Amsterdam/bereikbaarheid-backend/pkg/database"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/datastructure"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/geo"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/kv"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/server/rest"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/server/rest/service"
	"github.com/Amsterdam/bereikbaarheid-backend/pkg/snap"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	listenAddr = flag.String("listenaddr", ":8000", "server listen address")
	kvPath     = flag.String("kvpath", "bereikbaarheidDB", "path of the segment index store")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	if err := godotenv.Load(); err != nil {
		log.WithError(err).Info("no .env file, using environment as is")
	}

	db, err := database.Open(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.WithError(err).Fatal("connecting to database")
	}
	defer db.Close()

	networkStore := database.NewNetworkStore(db)
	restrictionStore := database.NewRestrictionStore(db)
	signStore := database.NewSignStore(db)
	elementStore := database.NewElementStore(db)

	ctx := context.Background()
	edges, err := networkStore.Edges(ctx)
	if err != nil {
		log.WithError(err).Fatal("loading road network")
	}
	nodes, err := networkStore.Nodes(ctx)
	if err != nil {
		log.WithError(err).Fatal("loading road network nodes")
	}
	log.WithFields(logrus.Fields{"edges": len(edges), "nodes": len(nodes)}).
		Info("road network loaded")

	pebbleDB, err := pebble.Open(*kvPath, &pebble.Options{})
	if err != nil {
		log.WithError(err).Fatal("opening segment index store")
	}

	kvDB := kv.NewKVDB(pebbleDB, log)
	defer kvDB.Close()

	go func() {
		segments := make([]datastructure.DirectedSegment, 0, len(edges))
		for _, e := range edges {
			line := make([]geo.Location, len(e.Geometry))
			for i, c := range e.Geometry {
				line[i] = geo.NewLocation(c.Lat, c.Lon)
			}
			segments = append(segments, datastructure.NewDirectedSegment(e, geo.EncodePolyline(line)))
		}
		if err := kvDB.BuildSegmentIndex(segments); err != nil {
			log.WithError(err).Fatal("building segment index")
		}
		log.Infof("segment index ready, server listening at %s", *listenAddr)
	}()

	nodeLocator := snap.NewNodeLocator(nodes)
	segmentLocator := snap.NewSegmentLocator(kvDB)

	svc := service.NewAccessibilityService(
		networkStore,
		restrictionStore,
		signStore,
		elementStore,
		nodeLocator,
		segmentLocator,
		log,
	)

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.AccessibilityRouter(r, svc, m)

	log.Fatal(http.ListenAndServe(*listenAddr, r))
}
