package models

import "time"

// CartItem references a live product; unlike order items it is not a price
// snapshot, the stored price is display-only and revalidated at checkout.
type CartItem struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Qty     int     `json:"qty"`
}

type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
