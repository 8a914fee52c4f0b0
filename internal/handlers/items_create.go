package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
	"github.com/sbilibin2017/gw-secondchance/internal/services"
)

// maxUploadBytes bounds the multipart form held in memory.
const maxUploadBytes = 32 << 20

// ItemCreator defines the interface that the item creation service must implement.
type ItemCreator interface {
	Create(ctx context.Context, item models.ItemDB, rawComments string) (*models.ItemDB, error)
}

// FileSaver persists an uploaded file and returns a reference usable as the
// item image field.
type FileSaver interface {
	Save(name string, r io.Reader) (string, error)
}

// NewItemCreateHandler returns an HTTP handler creating an item from a
// multipart form with an optional file part.
// @Summary Create a new item
// @Description Creates an item with a monotonically assigned id. Accepts multipart form fields and an optional image file.
// @Tags items
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Item name"
// @Param category formData string false "Category"
// @Param condition formData string false "Condition"
// @Param zipcode formData string false "Zipcode"
// @Param description formData string false "Description"
// @Param age_days formData int true "Age in days, non-negative"
// @Param comments formData string false "JSON array of comments"
// @Param file formData file false "Image file"
// @Success 201 {object} models.ItemDB "Created item"
// @Failure 400 {object} handlers.ItemErrorResponse "Invalid input"
// @Router /api/secondchance/items [post]
func NewItemCreateHandler(svc ItemCreator, files FileSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ItemErrorResponse{
				Error: "invalid multipart form",
			})
			return
		}

		ageDays, err := strconv.Atoi(r.FormValue("age_days"))
		if err != nil || ageDays < 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ItemErrorResponse{
				Error: "age_days must be a non-negative integer",
			})
			return
		}

		item := models.ItemDB{
			Name:        r.FormValue("name"),
			Category:    r.FormValue("category"),
			Condition:   r.FormValue("condition"),
			Zipcode:     r.FormValue("zipcode"),
			Description: r.FormValue("description"),
			Image:       r.FormValue("image"),
			AgeDays:     ageDays,
		}

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			ref, err := files.Save(header.Filename, file)
			if err != nil {
				logger.Log.Errorw("failed to store uploaded file", "name", header.Filename, "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ItemErrorResponse{
					Error: "Internal server error",
				})
				return
			}
			item.Image = ref
		} else if !errors.Is(err, http.ErrMissingFile) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ItemErrorResponse{
				Error: "invalid file upload",
			})
			return
		}

		created, err := svc.Create(r.Context(), item, r.FormValue("comments"))
		if err != nil {
			switch {
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

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}
