// Package server exposes the playback controller over HTTP: a JSON API for
// commands and queries, plus a server-sent-events stream of state changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mlegall/strum/internal/ingest"
	"github.com/mlegall/strum/internal/playback"
)

// Server serves the playback API.
type Server struct {
	router *mux.Router
	server *http.Server

	ctrl     *playback.Controller
	ingester *ingest.Ingester
	log      *logrus.Entry
}

// New creates a server listening on addr once started.
func New(addr string, ctrl *playback.Controller, ingester *ingest.Ingester) *Server {
	s := &Server{
		router:   mux.NewRouter().StrictSlash(false),
		ctrl:     ctrl,
		ingester: ingester,
		log:      logrus.WithField("component", "server"),
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(notFoundAction)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedAction)
	api.Use(s.recoverMiddleware)

	api.HandleFunc("/tracks", s.uploadTracksAction).Methods("POST")
	api.HandleFunc("/tracks", s.listTracksAction).Methods("GET")
	api.HandleFunc("/tracks/{id}/artwork", s.artworkAction).Methods("GET")
	api.HandleFunc("/state", s.stateAction).Methods("GET")

	api.HandleFunc("/select/{index}", s.selectAction).Methods("POST")
	api.HandleFunc("/toggle", s.toggleAction).Methods("POST")
	api.HandleFunc("/next", s.nextAction).Methods("POST")
	api.HandleFunc("/previous", s.previousAction).Methods("POST")
	api.HandleFunc("/shuffle", s.shuffleAction).Methods("POST")
	api.HandleFunc("/repeat", s.repeatAction).Methods("POST")
	api.HandleFunc("/mute", s.muteAction).Methods("POST")
	api.HandleFunc("/volume", s.volumeAction).Methods("POST")
	api.HandleFunc("/seek", s.seekAction).Methods("POST")
	api.HandleFunc("/filter", s.filterAction).Methods("POST")
	api.HandleFunc("/likes/{id}", s.toggleLikeAction).Methods("POST")

	api.HandleFunc("/events", s.eventsAction).Methods("GET")

	// Tell the browser that it's OK for JS to communicate with the server
	originsOk := handlers.AllowedOrigins([]string{"*"})
	headersOk := handlers.AllowedHeaders([]string{"Content-Type"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	s.server = &http.Server{
		Addr:        addr,
		Handler:     handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(s.router)),
		ReadTimeout: time.Minute * 4,
		IdleTimeout: time.Minute * 4,
		// No write timeout: the events endpoint streams indefinitely.
	}

	return s
}

// Handler returns the routed handler, without the CORS and compression
// wrappers. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called. It blocks.
func (s *Server) Start() error {
	s.log.WithField("addr", s.server.Addr).Info("listening")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Warnf("recovered from panic: [%v] - stack trace:\n%s", rec, debug.Stack())
				respondError(w, fmt.Sprintf("%v", rec), http.StatusInternalServerError)
			}
		}()
		s.log.Debugf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
