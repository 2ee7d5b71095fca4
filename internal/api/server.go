package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/playoff-simulator/internal/league"
)

// Limits bounds what a request may ask the simulator for.
type Limits struct {
	DefaultTrials int
	MaxTrials     int
	Workers       int
}

// Server exposes one league over HTTP.
type Server struct {
	season *league.Season
	limits Limits
	log    *logrus.Entry
	router *mux.Router
}

func NewServer(season *league.Season, limits Limits, log *logrus.Entry) *Server {
	s := &Server{
		season: season,
		limits: limits,
		log:    log.WithField("component", "api"),
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestLogger)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/league", s.handleLeague).Methods(http.MethodGet)
	s.router.HandleFunc("/teams/{name}", s.handleTeam).Methods(http.MethodGet)
	s.router.HandleFunc("/simulations", s.handleSimulate).Methods(http.MethodPost)
	s.router.HandleFunc("/simulations/sample", s.handleSample).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.log.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.status,
			"latency": time.Since(start),
		})
		if r.URL.RawQuery != "" {
			entry = entry.WithField("query", r.URL.RawQuery)
		}
		switch {
		case rec.status >= 500:
			entry.Error("Internal Server Error")
		case rec.status >= 400:
			entry.Warn("Client Error")
		default:
			entry.Info("Request completed")
		}
	})
}
