// Package mockapi is an in-memory stand-in for the stock management backend,
// used by the development server and by client/service tests. It implements
// the same routes, JSON shapes and error responses the real API exposes.
package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stockdesk-app/stockdesk/internal/api"
)

type Server struct {
	secret []byte

	mu           sync.Mutex
	nextID       int64
	credentials  map[string]string
	users        map[int64]api.User
	payments     map[int64]api.Payment
	contacts     map[int64]api.Contact
	products     map[int64]api.Product
	containers   map[int64]api.Container
	transactions map[int64]api.Transaction
	logs         map[int64]api.InventoryLog
	settings     api.Settings
}

// New returns a server with a single admin/admin account and no data.
func New(secret string) *Server {
	s := &Server{
		secret:       []byte(secret),
		credentials:  map[string]string{"admin": "admin"},
		users:        map[int64]api.User{},
		payments:     map[int64]api.Payment{},
		contacts:     map[int64]api.Contact{},
		products:     map[int64]api.Product{},
		containers:   map[int64]api.Container{},
		transactions: map[int64]api.Transaction{},
		logs:         map[int64]api.InventoryLog{},
		settings: api.Settings{
			BusinessName: "Stockdesk Demo",
			Currency:     "USD",
			TaxRate:      0,
		},
	}

	s.users[s.id()] = api.User{ID: 1, Username: "admin", Role: "owner", CreatedAt: time.Now().UTC()}

	return s
}

// Router builds the http.Handler. Request logging is left to the caller so
// tests stay quiet.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", s.listPayments)
				r.Post("/", s.createPayment)
				r.Patch("/{id}", s.updatePayment)
				r.Delete("/{id}", s.deletePayment)
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", s.listContacts)
				r.Post("/", s.createContact)
				r.Patch("/{id}", s.updateContact)
				r.Delete("/{id}", s.deleteContact)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", s.listProducts)
				r.Get("/{id}", s.getProduct)
			})

			r.Get("/containers", s.listContainers)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.listTransactions)
				r.Post("/", s.createTransaction)
				r.Get("/{id}", s.getTransaction)
				r.Delete("/{id}", s.deleteTransaction)
			})

			r.Route("/inventory-logs", func(r chi.Router) {
				r.Get("/", s.listInventoryLogs)
				r.Post("/", s.createInventoryLog)
				r.Delete("/{id}", s.deleteInventoryLog)
			})

			r.Get("/users", s.listUsers)
			r.Get("/settings", s.getSettings)
			r.Put("/settings", s.updateSettings)
			r.Get("/dashboard", s.dashboard)
		})
	})

	return router
}

// id hands out the next server-assigned id. Callers hold s.mu.
func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
