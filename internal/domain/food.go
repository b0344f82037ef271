package domain

import "time"

// Food is a catalog product. Price is in minor currency units.
type Food struct {
	ID          string    `json:"id"`
	CategoryID  *string   `json:"categoryId"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	IsAvailable bool      `json:"isAvailable"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
