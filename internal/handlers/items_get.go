package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
	"github.com/sbilibin2017/gw-secondchance/internal/services"
)

// ItemGetter defines the interface that the single-item lookup must implement.
type ItemGetter interface {
	Get(ctx context.Context, id string) (*models.ItemDB, error)
}

// NewItemGetHandler returns an HTTP handler fetching a single item by id.
// @Summary Get an item
// @Description Returns the item with the given id
// @Tags items
// @Produce json
// @Param id path string true "Item id"
// @Success 200 {object} models.ItemDB "Item"
// @Failure 404 {object} handlers.ItemErrorResponse "Item not found"
// @Router /api/secondchance/items/{id} [get]
func NewItemGetHandler(svc ItemGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrItemNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ItemErrorResponse{
					Error: "secondChanceItem not found",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ItemErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(item)
	}
}
