package orders

import "github.com/satriojati/kedai/internal/domain"

// AggregateItems merges repeated references to the same food into a single
// entry, summing quantities. Each food keeps the position of its first
// appearance, so the output is deterministic for a given input. An input
// with no duplicates comes back unchanged.
func AggregateItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if i, seen := index[item.FoodID]; seen {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.FoodID] = len(out)
		out = append(out, item)
	}

	return out
}
