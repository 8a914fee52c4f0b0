package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
)

// ItemLister defines the interface that the listing service must implement.
type ItemLister interface {
	List(ctx context.Context) ([]models.ItemDB, error)
}

// ItemErrorResponse represents an error response for item operations
// swagger:model ItemErrorResponse
type ItemErrorResponse struct {
	// Error message
	// default: secondChanceItem not found
	Error string `json:"error"`
}

// NewItemsListHandler returns an HTTP handler listing all items.
// @Summary List all items
// @Description Returns every item in store insertion order
// @Tags items
// @Produce json
// @Success 200 {array} models.ItemDB "All items"
// @Failure 500 {object} handlers.ItemErrorResponse "Internal server error"
// @Router /api/secondchance/items [get]
func NewItemsListHandler(svc ItemLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ItemErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		if items == nil {
			items = []models.ItemDB{}
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(items)
	}
}
