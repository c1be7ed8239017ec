package http

import (
	"net/http"
	"time"

	"quiz-studio-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the transport-level knobs.
type RouterConfig struct {
	CORSOrigins  []string
	SecureCookie bool
}

// NewRouter wires the REST API, the play websocket and the operational endpoints.
func NewRouter(quizzes *app.QuizService, users *app.UserService, cfg RouterConfig) http.Handler {
	api := &handlers{quizzes: quizzes, users: users, secureCookie: cfg.SecureCookie}
	ws := NewWSHandler(quizzes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(Authenticator(users))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws/play", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", api.signup)
			r.Post("/login", api.login)
			r.Post("/logout", api.logout)
			r.Get("/me", api.me)
		})
		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", api.listPublished)
			r.Post("/", api.createQuiz)
			r.Get("/my", api.listMine)
			r.Get("/{id}", api.getQuiz)
			r.Put("/{id}", api.updateQuiz)
			r.Delete("/{id}", api.deleteQuiz)
			r.Post("/{id}/grade", api.gradeAttempt)
		})
		r.Route("/drafts", func(r chi.Router) {
			r.Get("/new", api.newDraft)
			r.Post("/edit", api.editDraft)
		})
	})
	return r
}

type handlers struct {
	quizzes      *app.QuizService
	users        *app.UserService
	secureCookie bool
}
