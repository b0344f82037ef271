package domain

import "time"

// OrderCreatedEvent is published to Kafka after the order transaction
// commits. Consumers only see fully reserved orders.
type OrderCreatedEvent struct {
	OrderID      string      `json:"order_id"`
	CustomerName string      `json:"customer_name,omitempty"`
	Status       OrderStatus `json:"status"`
	Total        int64       `json:"total"`
	Items        []OrderItem `json:"items"`
	Timestamp    time.Time   `json:"timestamp"`
}
