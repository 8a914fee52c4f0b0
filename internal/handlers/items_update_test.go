package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-secondchance/internal/handlers"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
	"github.com/sbilibin2017/gw-secondchance/internal/services"
)

func TestItemUpdateHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name            string
		id              string
		body            string
		mockSetup       func(svc *handlers.MockItemUpdater)
		expectedCode    int
		expectedOutcome string
		expectedErr     string
	}{
		{
			name: "successful update",
			id:   "5",
			body: `{"category":"seating","condition":"New","age_days":730,"description":"refinished"}`,
			mockSetup: func(svc *handlers.MockItemUpdater) {
				svc.EXPECT().
					Update(gomock.Any(), "5", models.ItemUpdate{
						Category:    "seating",
						Condition:   "New",
						AgeDays:     730,
						Description: "refinished",
					}).
					Return(true, nil)
			},
			expectedCode:    http.StatusOK,
			expectedOutcome: "success",
		},
		{
			name: "write did not apply",
			id:   "5",
			body: `{"category":"seating"}`,
			mockSetup: func(svc *handlers.MockItemUpdater) {
				svc.EXPECT().Update(gomock.Any(), "5", gomock.Any()).Return(false, nil)
			},
			expectedCode:    http.StatusOK,
			expectedOutcome: "failed",
		},
		{
			name:         "invalid request body",
			id:           "5",
			body:         `{invalid`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "invalid request body",
		},
		{
			name: "item not found",
			id:   "404",
			body: `{"category":"seating"}`,
			mockSetup: func(svc *handlers.MockItemUpdater) {
				svc.EXPECT().Update(gomock.Any(), "404", gomock.Any()).
					Return(false, services.ErrItemNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedErr:  "secondChanceItem not found",
		},
		{
			name: "negative age_days",
			id:   "5",
			body: `{"age_days":-1}`,
			mockSetup: func(svc *handlers.MockItemUpdater) {
				svc.EXPECT().Update(gomock.Any(), "5", gomock.Any()).
					Return(false, services.ErrValidation)
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "age_days must be a non-negative integer",
		},
		{
			name: "internal error",
			id:   "5",
			body: `{"category":"seating"}`,
			mockSetup: func(svc *handlers.MockItemUpdater) {
				svc.EXPECT().Update(gomock.Any(), "5", gomock.Any()).
					Return(false, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := handlers.NewMockItemUpdater(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			router := chi.NewRouter()
			router.Put("/api/secondchance/items/{id}", handlers.NewItemUpdateHandler(mockSvc))

			req := httptest.NewRequest(http.MethodPut, "/api/secondchance/items/"+tt.id, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusOK {
				var resp handlers.ItemUpdateResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedOutcome, resp.Uploaded)
				return
			}

			var errResp handlers.ItemErrorResponse
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
			assert.Equal(t, tt.expectedErr, errResp.Error)
		})
	}
}
