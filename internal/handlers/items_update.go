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

// ItemUpdater defines the interface that the item update service must implement.
type ItemUpdater interface {
	Update(ctx context.Context, id string, upd models.ItemUpdate) (bool, error)
}

// ItemUpdateResponse reports the boolean-style update outcome
// swagger:model ItemUpdateResponse
type ItemUpdateResponse struct {
	// Outcome flag
	// default: success
	Uploaded string `json:"uploaded"`
}

// NewItemUpdateHandler returns an HTTP handler applying the narrow-field
// update: category, condition, age_days and description only.
// @Summary Update an item
// @Description Overwrites category, condition, age_days and description; age_years is recomputed. Other fields stay untouched.
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item id"
// @Param itemUpdate body models.ItemUpdate true "Fields to overwrite"
// @Success 200 {object} handlers.ItemUpdateResponse "Outcome flag"
// @Failure 404 {object} handlers.ItemErrorResponse "Item not found"
// @Router /api/secondchance/items/{id} [put]
func NewItemUpdateHandler(svc ItemUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var upd models.ItemUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ItemErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		ok, err := svc.Update(r.Context(), id, upd)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrItemNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ItemErrorResponse{
					Error: "secondChanceItem not found",
				})
			case errors.Is(err, services.ErrValidation):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ItemErrorResponse{
					Error: "age_days must be a non-negative integer",
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
		json.NewEncoder(w).Encode(ItemUpdateResponse{Uploaded: outcome})
	}
}
