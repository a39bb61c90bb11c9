package orderControllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name      string
		err       error
		status    int
		productID float64
	}{
		{"empty cart", checkout.ErrEmptyCart, http.StatusBadRequest, 0},
		{"missing address", checkout.ErrMissingAddress, http.StatusBadRequest, 0},
		{"payment method", checkout.ErrInvalidPaymentMethod, http.StatusBadRequest, 0},
		{"bad quantity", &checkout.LineItemError{ProductID: 4, Err: checkout.ErrInvalidQuantity}, http.StatusBadRequest, 4},
		{"not found", &checkout.LineItemError{ProductID: 7, Err: checkout.ErrProductNotFound}, http.StatusNotFound, 7},
		{"insufficient", &checkout.LineItemError{ProductID: 8, Err: checkout.ErrInsufficientStock}, http.StatusConflict, 8},
		{"inactive", &checkout.LineItemError{ProductID: 9, Err: checkout.ErrProductInactive}, http.StatusUnprocessableEntity, 9},
		{"persistence", fmt.Errorf("%w: %w", checkout.ErrPersistence, errors.New("db")), http.StatusInternalServerError, 0},
		{"forbidden", lifecycle.ErrForbidden, http.StatusForbidden, 0},
		{"order not found", lifecycle.ErrNotFound, http.StatusNotFound, 0},
		{"invalid status", lifecycle.ErrInvalidStatus, http.StatusBadRequest, 0},
		{"empty update", lifecycle.ErrEmptyUpdate, http.StatusBadRequest, 0},
		{"transition", lifecycle.ErrInvalidTransition, http.StatusConflict, 0},
		{"unknown", errors.New("???"), http.StatusInternalServerError, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tc.productID != 0 {
				assert.Equal(t, tc.productID, body["product_id"])
			} else {
				assert.NotContains(t, body, "product_id")
			}
		})
	}
}

func TestPersistenceErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, fmt.Errorf("%w: %w", checkout.ErrPersistence, errors.New("pq: password authentication failed")))
	assert.NotContains(t, w.Body.String(), "password")
}
