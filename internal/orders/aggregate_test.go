package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/satriojati/kedai/internal/domain"
)

func TestAggregateItems(t *testing.T) {
	tests := []struct {
		name  string
		input []domain.CartItem
		want  []domain.CartItem
	}{
		{
			name:  "empty input",
			input: []domain.CartItem{},
			want:  []domain.CartItem{},
		},
		{
			name: "no duplicates unchanged",
			input: []domain.CartItem{
				{FoodID: "a", Quantity: 1},
				{FoodID: "b", Quantity: 2},
			},
			want: []domain.CartItem{
				{FoodID: "a", Quantity: 1},
				{FoodID: "b", Quantity: 2},
			},
		},
		{
			name: "duplicates merge at first position",
			input: []domain.CartItem{
				{FoodID: "a", Quantity: 1},
				{FoodID: "b", Quantity: 2},
				{FoodID: "a", Quantity: 3},
			},
			want: []domain.CartItem{
				{FoodID: "a", Quantity: 4},
				{FoodID: "b", Quantity: 2},
			},
		},
		{
			name: "same id repeated many times",
			input: []domain.CartItem{
				{FoodID: "a", Quantity: 1},
				{FoodID: "a", Quantity: 1},
				{FoodID: "a", Quantity: 1},
			},
			want: []domain.CartItem{
				{FoodID: "a", Quantity: 3},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AggregateItems(tc.input))
		})
	}
}

func TestAggregateItemsProperties(t *testing.T) {
	itemGen := rapid.Custom(func(t *rapid.T) domain.CartItem {
		return domain.CartItem{
			FoodID:   rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}).Draw(t, "foodId"),
			Quantity: rapid.IntRange(1, 100).Draw(t, "quantity"),
		}
	})

	t.Run("quantities sum and order follows first appearance", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			input := rapid.SliceOfN(itemGen, 0, 30).Draw(t, "input")

			got := AggregateItems(input)

			sums := map[string]int{}
			var firstSeen []string
			for _, item := range input {
				if _, ok := sums[item.FoodID]; !ok {
					firstSeen = append(firstSeen, item.FoodID)
				}
				sums[item.FoodID] += item.Quantity
			}

			if len(got) != len(firstSeen) {
				t.Fatalf("expected %d distinct items, got %d", len(firstSeen), len(got))
			}
			for i, item := range got {
				if item.FoodID != firstSeen[i] {
					t.Fatalf("position %d: expected %s, got %s", i, firstSeen[i], item.FoodID)
				}
				if item.Quantity != sums[item.FoodID] {
					t.Fatalf("%s: expected quantity %d, got %d", item.FoodID, sums[item.FoodID], item.Quantity)
				}
			}
		})
	})

	t.Run("idempotent", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			input := rapid.SliceOfN(itemGen, 0, 30).Draw(t, "input")

			once := AggregateItems(input)
			twice := AggregateItems(once)

			assert.Equal(t, once, twice)
		})
	})
}
