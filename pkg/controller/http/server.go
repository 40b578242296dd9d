package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/usecase"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	pinger interfaces.Pinger
}

type Options func(*Server)

// WithPinger makes /health check a backend before reporting ok
func WithPinger(p interfaces.Pinger) Options {
	return func(s *Server) {
		s.pinger = p
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/patients", func(r chi.Router) {
			r.Get("/", s.listPatientsHandler)
			r.Put("/", s.putPatientHandler)

			r.Route("/{patientID}", func(r chi.Router) {
				r.Get("/", s.getPatientHandler)
				r.Get("/messages", s.listMessagesHandler)
				r.Post("/messages", s.postMessageHandler)
				r.Get("/requests", s.listRequestsHandler)
				r.Get("/knowledge", s.knowledgeHandler)
				r.Get("/summary", s.summaryHandler)
			})
		})

		// Single patient view: operates on the first registered patient
		r.Get("/chat", s.getChatHandler)
		r.Post("/chat", s.postChatHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			handleError(w, r, err)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
