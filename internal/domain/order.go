package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusProcessed OrderStatus = "PROCESSED"
	OrderStatusDone      OrderStatus = "DONE"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the four wire values.
// Matching is case-sensitive, there are no synonyms.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessed, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one line of an order. FoodName and FoodPrice are snapshots
// taken at creation time; later catalog changes never touch them.
type OrderItem struct {
	FoodID    string `json:"foodId"`
	FoodName  string `json:"foodName"`
	FoodPrice int64  `json:"foodPrice"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID            string      `json:"id"`
	CustomerName  *string     `json:"customerName"`
	CustomerPhone *string     `json:"customerPhone"`
	Note          *string     `json:"note"`
	Status        OrderStatus `json:"status"`
	Total         int64       `json:"total"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// CartItem is the aggregated {foodId, quantity} pair produced by request
// normalization. It only lives for the duration of one request.
type CartItem struct {
	FoodID   string `json:"foodId"`
	Quantity int    `json:"quantity"`
}
