package orders

import "github.com/satriojati/kedai/internal/domain"

// CheckStock verifies every aggregated item against the catalog rows
// fetched for exactly the referenced food ids. Checks run in order and the
// first failure wins: missing foods, then availability, then stock levels.
// On success it returns the food snapshot by id and the order total priced
// from that snapshot. The check is read-only; the write-time conditional
// decrement in the repository is what actually closes the race with
// concurrent orders.
func CheckStock(items []domain.CartItem, foods []domain.Food) (map[string]domain.Food, int64, error) {
	byID := make(map[string]domain.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	if len(byID) < len(items) {
		return nil, 0, domain.NewNotFoundError("some foods in the order could not be found")
	}

	for _, item := range items {
		food, ok := byID[item.FoodID]
		if !ok {
			return nil, 0, domain.NewNotFoundError("some foods in the order could not be found")
		}
		if !food.IsAvailable {
			return nil, 0, domain.NewNotFoundError("food " + food.Name + " is not available")
		}
	}

	var total int64
	for _, item := range items {
		food := byID[item.FoodID]
		if food.Stock < item.Quantity {
			return nil, 0, &domain.StockError{FoodName: food.Name, Remaining: food.Stock}
		}
		total += food.Price * int64(item.Quantity)
	}

	return byID, total, nil
}
