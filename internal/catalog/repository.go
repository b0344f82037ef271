package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/satriojati/kedai/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM categories
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	category.ID = uuid.New().String()
	return r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`, category.ID, category.Name).Scan(&category.CreatedAt)
}

func (r *Repository) UpdateCategory(ctx context.Context, id, name string) (*domain.Category, error) {
	category := &domain.Category{ID: id, Name: name}
	err := r.db.QueryRowContext(ctx, `
		UPDATE categories SET name = $1
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING created_at
	`, name, id).Scan(&category.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return category, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE categories SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// ListFoods returns catalog foods. With onlyAvailable set it serves the
// public menu: available, non-deleted foods only.
func (r *Repository) ListFoods(ctx context.Context, onlyAvailable bool) ([]domain.Food, error) {
	query := `
		SELECT id, category_id, name, price, stock, is_available, image_url, created_at, updated_at
		FROM foods
		WHERE deleted_at IS NULL
	`
	if onlyAvailable {
		query += " AND is_available"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	foods := []domain.Food{}
	for rows.Next() {
		var f domain.Food
		if err := rows.Scan(&f.ID, &f.CategoryID, &f.Name, &f.Price, &f.Stock, &f.IsAvailable, &f.ImageURL, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return foods, nil
}

func (r *Repository) GetFood(ctx context.Context, id string) (*domain.Food, error) {
	food := &domain.Food{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, price, stock, is_available, image_url, created_at, updated_at
		FROM foods
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&food.ID, &food.CategoryID, &food.Name, &food.Price, &food.Stock, &food.IsAvailable, &food.ImageURL, &food.CreatedAt, &food.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return food, nil
}

func (r *Repository) CreateFood(ctx context.Context, food *domain.Food) error {
	food.ID = uuid.New().String()
	return r.db.QueryRowContext(ctx, `
		INSERT INTO foods (id, category_id, name, price, stock, is_available, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`, food.ID, food.CategoryID, food.Name, food.Price, food.Stock, food.IsAvailable, food.ImageURL).
		Scan(&food.CreatedAt, &food.UpdatedAt)
}

func (r *Repository) UpdateFood(ctx context.Context, food *domain.Food) (*domain.Food, error) {
	err := r.db.QueryRowContext(ctx, `
		UPDATE foods
		SET category_id = $1, name = $2, price = $3, stock = $4, is_available = $5, image_url = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`, food.CategoryID, food.Name, food.Price, food.Stock, food.IsAvailable, food.ImageURL, food.ID).
		Scan(&food.CreatedAt, &food.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return food, nil
}

func (r *Repository) DeleteFood(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE foods SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
