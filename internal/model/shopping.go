package model

import "time"

// CartItem is a single shopping-list line. Total is computed at insert time
// and refunded verbatim on removal.
type CartItem struct {
	ID        int64     `json:"id"`
	Username  string    `json:"user"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}
