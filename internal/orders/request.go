package orders

import (
	"github.com/satriojati/kedai/internal/domain"
	"github.com/satriojati/kedai/internal/validate"
)

// CreateOrderInput is the canonical, validated form of an order submission.
// Alias shapes (cartItems, id/qty) never leak past ParseCreateOrder.
type CreateOrderInput struct {
	CustomerName  *string
	CustomerPhone *string
	Note          *string
	Status        domain.OrderStatus
	Items         []domain.CartItem
}

// ParseCreateOrder validates and normalizes an untyped order payload.
// Two item shapes are accepted: the canonical items array with
// foodId/quantity, and the cart-shaped cartItems array where id and qty
// are aliases. Entries with an empty foodId or a non-positive quantity are
// dropped before the non-empty check. allowStatus admits the optional
// admin status field, defaulted to PENDING when absent.
func ParseCreateOrder(payload map[string]any, allowStatus bool) (*CreateOrderInput, error) {
	var result validate.Result

	input := &CreateOrderInput{
		CustomerName:  validate.OptionalString(payload, "customerName", &result),
		CustomerPhone: validate.OptionalString(payload, "customerPhone", &result),
		Note:          validate.OptionalString(payload, "note", &result),
		Status:        domain.OrderStatusPending,
	}

	var items []domain.CartItem
	items = appendItems(items, validate.Array(payload, "items"))
	items = appendItems(items, validate.Array(payload, "cartItems"))

	if len(items) == 0 {
		result.Fail("items", "at least one item is required")
	}

	if allowStatus {
		if v, ok := payload["status"]; ok && v != nil {
			s, isString := validate.String(v)
			status := domain.OrderStatus(s)
			if !isString || !domain.ValidStatus(status) {
				result.Fail("status", "must be one of PENDING, PROCESSED, DONE, CANCELLED")
			} else {
				input.Status = status
			}
		}
	}

	if !result.OK() {
		return nil, domain.NewValidationError("invalid order payload", result.Details()...)
	}

	input.Items = AggregateItems(items)
	return input, nil
}

// appendItems collects well-formed entries from one raw item array,
// silently dropping everything malformed.
func appendItems(items []domain.CartItem, raw []any) []domain.CartItem {
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		id, ok := validate.String(firstOf(m, "foodId", "id"))
		if !ok || id == "" {
			continue
		}

		qty, ok := validate.Int(firstOf(m, "quantity", "qty"))
		if !ok || qty <= 0 {
			continue
		}

		items = append(items, domain.CartItem{FoodID: id, Quantity: qty})
	}
	return items
}

func firstOf(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
