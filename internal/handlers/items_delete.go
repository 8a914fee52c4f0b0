package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/services"
)

// ItemDeleter defines the interface that the item deletion service must implement.
type ItemDeleter interface {
	Delete(ctx context.Context, id string) (bool, error)
}

// ItemDeleteResponse reports the deletion outcome
// swagger:model ItemDeleteResponse
type ItemDeleteResponse struct {
	// Outcome flag
	// default: success
	Deleted string `json:"deleted"`
}

// NewItemDeleteHandler returns an HTTP handler removing an item. Deletion is
// terminal: any later access to the id yields not found.
// @Summary Delete an item
// @Description Removes the item and its embedded comments
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item id"
// @Success 200 {object} handlers.ItemDeleteResponse "Outcome flag"
// @Failure 404 {object} handlers.ItemErrorResponse "Item not found"
// @Router /api/secondchance/items/{id} [delete]
func NewItemDeleteHandler(svc ItemDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		ok, err := svc.Delete(r.Context(), id)
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

		outcome := "success"
		if !ok {
			outcome = "failed"
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ItemDeleteResponse{Deleted: outcome})
	}
}
