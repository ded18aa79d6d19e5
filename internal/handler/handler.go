package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	router *chi.Mux
}

func NewHandler(shopping *ShoppingHandler, bank *BankHandler, payment *PaymentHandler) *Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	// The React frontend is served from a different origin in dev
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &Handler{
		router: router,
	}

	h.registerRoutes(shopping, bank, payment)
	return h
}

func (h *Handler) registerRoutes(shopping *ShoppingHandler, bank *BankHandler, payment *PaymentHandler) {
	h.router.Get("/", h.Status)
	h.router.Get("/health", h.HealthCheck)

	h.router.Route("/shopping", func(r chi.Router) {
		r.Post("/add", shopping.AddItem)
		r.Delete("/remove/{name}", shopping.RemoveItem)
		r.Get("/items", shopping.ListItems)
		r.Get("/total", shopping.Total)
		r.Get("/summary", shopping.Summary)
		r.Delete("/clear", shopping.Clear)
	})

	h.router.Route("/bank", func(r chi.Router) {
		r.Post("/init", bank.Init)
		r.Get("/balance", bank.Balance)
		r.Post("/transfer", bank.Transfer)
		r.Get("/transfers", bank.Transfers)
	})

	h.router.Route("/payment", func(r chi.Router) {
		r.Post("/create-intent", payment.CreateIntent)
		r.Post("/confirm", payment.Confirm)
		r.Get("/history", payment.History)
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "backend up"})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
