package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"basira/backend/internal/model"
	"basira/backend/internal/service"
)

type ShoppingHandler struct {
	svc    *service.CartService
	ledger *service.LedgerService
}

func NewShoppingHandler(svc *service.CartService, ledger *service.LedgerService) *ShoppingHandler {
	return &ShoppingHandler{svc: svc, ledger: ledger}
}

type AddItemRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	User     string  `json:"user"`
}

func (h *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name required")
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "user required")
		return
	}
	if req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "price must be greater than 0")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "quantity must not be negative")
		return
	}

	item, err := h.svc.AddItem(r.Context(), req.User, req.Name, req.Price, req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "item added",
		"total":   item.Total,
	})
}

func (h *ShoppingHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name required")
		return
	}
	user := r.URL.Query().Get("user")

	item, err := h.svc.RemoveItem(r.Context(), name, user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "item removed",
		"refund":  item.Total,
		"user":    item.Username,
	})
}

func (h *ShoppingHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "user required")
		return
	}

	items, err := h.svc.Items(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Total reports the per-user cart total when ?user= is given, otherwise the
// sum across all users (the historic behavior of this endpoint).
func (h *ShoppingHandler) Total(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.Total(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total": total})
}

type summaryResponse struct {
	Items   []model.CartItem `json:"items"`
	Total   float64          `json:"total"`
	Balance float64          `json:"balance"`
}

// Summary returns the cart and the bank balance in one response so the
// frontend can render both panes from a single request.
func (h *ShoppingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "user required")
		return
	}

	var resp summaryResponse
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		items, err := h.svc.Items(ctx, user)
		if err != nil {
			return err
		}
		resp.Items = items
		return nil
	})
	g.Go(func() error {
		total, err := h.svc.Total(ctx, user)
		if err != nil {
			return err
		}
		resp.Total = total
		return nil
	})
	g.Go(func() error {
		balance, err := h.ledger.Balance(ctx, user)
		if err != nil {
			return err
		}
		resp.Balance = balance
		return nil
	})

	if err := g.Wait(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ShoppingHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
