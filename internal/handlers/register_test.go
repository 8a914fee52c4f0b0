package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-secondchance/internal/handlers"
	"github.com/sbilibin2017/gw-secondchance/internal/services"
)

func TestRegisterHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		body         string
		mockSetup    func(svc *handlers.MockRegisterer)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "successful registration",
			body: `{"email":"john@example.com","password":"secret123","firstName":"John","lastName":"Doe"}`,
			mockSetup: func(svc *handlers.MockRegisterer) {
				svc.EXPECT().
					Register(gomock.Any(), "john@example.com", "secret123", "John", "Doe").
					Return(&services.RegisterResult{Token: "token123", Email: "john@example.com"}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "invalid request body",
			body:         `{invalid`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "invalid request body",
		},
		{
			name: "email already exists",
			body: `{"email":"john@example.com","password":"secret123"}`,
			mockSetup: func(svc *handlers.MockRegisterer) {
				svc.EXPECT().
					Register(gomock.Any(), "john@example.com", "secret123", "", "").
					Return(nil, services.ErrEmailAlreadyRegistered)
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Email id already exists",
		},
		{
			name: "missing email or password",
			body: `{"email":"","password":""}`,
			mockSetup: func(svc *handlers.MockRegisterer) {
				svc.EXPECT().
					Register(gomock.Any(), "", "", "", "").
					Return(nil, services.ErrValidation)
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Email and password are required",
		},
		{
			name: "internal error",
			body: `{"email":"john@example.com","password":"secret123"}`,
			mockSetup: func(svc *handlers.MockRegisterer) {
				svc.EXPECT().
					Register(gomock.Any(), "john@example.com", "secret123", "", "").
					Return(nil, errors.New("db error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := handlers.NewMockRegisterer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := handlers.NewRegisterHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusOK {
				var resp handlers.RegisterResponse
				assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "token123", resp.AuthToken)
				assert.Equal(t, "john@example.com", resp.Email)
				return
			}

			var errResp handlers.RegisterErrorResponse
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
			assert.Equal(t, tt.expectedErr, errResp.Error)
		})
	}
}
