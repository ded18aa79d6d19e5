package model

import "time"

type Account struct {
	Username string  `json:"user"`
	Balance  float64 `json:"balance"`
}

type Transfer struct {
	ID           string    `json:"id"`
	FromUsername string    `json:"from"`
	ToUsername   string    `json:"to"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}
