package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/satriojati/kedai/internal/domain"
	"github.com/satriojati/kedai/internal/validate"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// HandleMenu serves the public storefront menu.
func (h *Handler) HandleMenu(w http.ResponseWriter, r *http.Request) {
	foods, err := h.repo.ListFoods(r.Context(), true)
	if err != nil {
		h.logger.Error("failed to list menu", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, foods)
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeCategoryName(w, r)
	if !ok {
		return
	}

	category := &domain.Category{Name: name}
	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		h.logger.Error("failed to create category", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	h.logger.Info("category created", "category_id", category.ID)
	h.writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	name, ok := h.decodeCategoryName(w, r)
	if !ok {
		return
	}

	category, err := h.repo.UpdateCategory(r.Context(), r.PathValue("id"), name)
	if err != nil {
		h.logger.Error("failed to update category", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	if category == nil {
		h.writeError(w, http.StatusNotFound, "category not found", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, category)
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.DeleteCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to delete category", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "category not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.repo.ListFoods(r.Context(), false)
	if err != nil {
		h.logger.Error("failed to list foods", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, foods)
}

func (h *Handler) HandleGetFood(w http.ResponseWriter, r *http.Request) {
	food, err := h.repo.GetFood(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to get food", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	if food == nil {
		h.writeError(w, http.StatusNotFound, "food not found", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, food)
}

func (h *Handler) HandleCreateFood(w http.ResponseWriter, r *http.Request) {
	food, ok := h.decodeFood(w, r)
	if !ok {
		return
	}

	if err := h.repo.CreateFood(r.Context(), food); err != nil {
		h.logger.Error("failed to create food", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	h.logger.Info("food created", "food_id", food.ID, "name", food.Name)
	h.writeJSON(w, http.StatusCreated, food)
}

func (h *Handler) HandleUpdateFood(w http.ResponseWriter, r *http.Request) {
	food, ok := h.decodeFood(w, r)
	if !ok {
		return
	}
	food.ID = r.PathValue("id")

	updated, err := h.repo.UpdateFood(r.Context(), food)
	if err != nil {
		h.logger.Error("failed to update food", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	if updated == nil {
		h.writeError(w, http.StatusNotFound, "food not found", nil)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) HandleDeleteFood(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.DeleteFood(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to delete food", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "food not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeCategoryName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return "", false
	}

	name, ok := validate.String(payload["name"])
	if !ok || name == "" {
		h.writeError(w, http.StatusBadRequest, "invalid category payload", []string{"name: must be a non-empty string"})
		return "", false
	}

	return name, true
}

func (h *Handler) decodeFood(w http.ResponseWriter, r *http.Request) (*domain.Food, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return nil, false
	}

	var result validate.Result
	food := &domain.Food{IsAvailable: true}

	name, ok := validate.String(payload["name"])
	if !ok || name == "" {
		result.Fail("name", "must be a non-empty string")
	}
	food.Name = name

	price, ok := validate.Int(payload["price"])
	if !ok || price < 0 {
		result.Fail("price", "must be a non-negative integer")
	}
	food.Price = int64(price)

	stock, ok := validate.Int(payload["stock"])
	if !ok || stock < 0 {
		result.Fail("stock", "must be a non-negative integer")
	}
	food.Stock = stock

	if v, ok := payload["isAvailable"]; ok && v != nil {
		available, isBool := v.(bool)
		if !isBool {
			result.Fail("isAvailable", "must be a boolean")
		} else {
			food.IsAvailable = available
		}
	}

	food.CategoryID = validate.OptionalString(payload, "categoryId", &result)
	food.ImageURL = validate.OptionalString(payload, "imageUrl", &result)

	if !result.OK() {
		h.writeError(w, http.StatusBadRequest, "invalid food payload", result.Details())
		return nil, false
	}

	return food, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, details []string) {
	h.writeJSON(w, status, errorResponse{Error: message, Details: details})
}
