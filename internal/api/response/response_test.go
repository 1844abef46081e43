package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	SuccessJSON(rec, req, http.StatusCreated, "Order created successfully.", map[string]string{"id": "1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Order created successfully.", body["message"])
	require.Equal(t, "1", body["data"].(map[string]any)["id"])
}

func TestErrorJSON(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		status  int
		message string
		check   func(t *testing.T, data any)
	}{
		{
			name: "validation lists fields",
			err: errs.Validation(
				errs.FieldError{Field: "items", Message: "At least one order item is required."},
				errs.FieldError{Field: "shippingAddress", Message: "shippingAddress is required"},
			),
			status:  http.StatusBadRequest,
			message: "Multiple validation errors occurred.",
			check: func(t *testing.T, data any) {
				fields := data.([]any)
				require.Len(t, fields, 2)
				require.Equal(t, "items", fields[0].(map[string]any)["field"])
			},
		},
		{
			name:    "insufficient stock carries shortage",
			err:     errs.InsufficientStock(errs.StockShortage{ProductID: "p1", Name: "Keyboard", Available: 1, Requested: 2}),
			status:  http.StatusBadRequest,
			message: "Insufficient stock for Keyboard. Available: 1, Requested: 2",
			check: func(t *testing.T, data any) {
				shortage := data.(map[string]any)
				require.Equal(t, "p1", shortage["productId"])
				require.EqualValues(t, 1, shortage["available"])
				require.EqualValues(t, 2, shortage["requested"])
			},
		},
		{
			name:    "forbidden",
			err:     errs.New(errs.ForbiddenCode, "You are not authorized to access this order."),
			status:  http.StatusForbidden,
			message: "You are not authorized to access this order.",
			check:   func(t *testing.T, data any) { require.Nil(t, data) },
		},
		{
			name:    "empty message falls back to code text",
			err:     &errs.AppError{Code: errs.UnavailableCode},
			status:  http.StatusServiceUnavailable,
			message: "unavailable",
			check:   func(t *testing.T, data any) { require.Nil(t, data) },
		},
		{
			name:    "plain error is hidden",
			err:     errors.New("pq: connection refused"),
			status:  http.StatusInternalServerError,
			message: "Internal server error.",
			check:   func(t *testing.T, data any) { require.Nil(t, data) },
		},
		{
			name:    "internal app error is hidden",
			err:     errs.Wrap(errs.InternalErrorCode, errors.New("tx aborted"), "Failed to create order."),
			status:  http.StatusInternalServerError,
			message: "Internal server error.",
			check:   func(t *testing.T, data any) { require.Nil(t, data) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			ErrorJSON(rec, req, tc.err)

			require.Equal(t, tc.status, rec.Code)
			body := decode(t, rec)
			require.Equal(t, false, body["success"])
			require.Equal(t, tc.message, body["message"])
			tc.check(t, body["data"])
		})
	}
}
