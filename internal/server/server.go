package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/communal-score/communityd/internal/auth"
	"github.com/communal-score/communityd/internal/events"
	"github.com/communal-score/communityd/internal/redeem"
	"github.com/communal-score/communityd/internal/storage"
)

// Server exposes the community engagement API over HTTP.
type Server struct {
	events       *events.Service
	coordinator  *redeem.Coordinator
	eventStore   storage.EventStore
	transactions storage.TransactionStore
	wallets      storage.WalletStore
	auth         *auth.Authenticator
	logger       *zap.Logger
}

// Deps are the collaborators injected into the server.
type Deps struct {
	Events       *events.Service
	Coordinator  *redeem.Coordinator
	EventStore   storage.EventStore
	Transactions storage.TransactionStore
	Wallets      storage.WalletStore
	Auth         *auth.Authenticator
	Logger       *zap.Logger
}

// New builds a Server from its dependencies.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		events:       deps.Events,
		coordinator:  deps.Coordinator,
		eventStore:   deps.EventStore,
		transactions: deps.Transactions,
		wallets:      deps.Wallets,
		auth:         deps.Auth,
		logger:       logger,
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(s.auth.Middleware)

		api.Post("/events", s.handleCreateEvent)
		api.Get("/events", s.handleListEvents)
		api.Get("/summary", s.handleSummary)
		api.Put("/wallet", s.handlePutWallet)
		api.Get("/wallet", s.handleGetWallet)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(auth.RequireAdmin)
			admin.Get("/events", s.handleAdminListEvents)
			admin.Get("/events/{id}/transactions", s.handleAdminEventTransactions)
			admin.Post("/events/{id}/redeem", s.handleAdminRedeem)
		})
	})

	return r
}
