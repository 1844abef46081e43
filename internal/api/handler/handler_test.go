package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParseOrderListQuery(t *testing.T) {
	testCases := []struct {
		name   string
		url    string
		want   model.OrderListQuery
		fields []string
	}{
		{name: "defaults", url: "/api/user/orders", want: model.OrderListQuery{Page: 1, Limit: 10}},
		{name: "explicit", url: "/api/user/orders?page=3&limit=25&status=delivered", want: model.OrderListQuery{Page: 3, Limit: 25, Status: "delivered"}},
		{name: "not numbers", url: "/api/user/orders?page=one&limit=ten", fields: []string{"page", "limit"}},
		{name: "out of range", url: "/api/user/orders?page=0&limit=101", fields: []string{"page", "limit"}},
		{name: "mixed errors", url: "/api/user/orders?page=abc&limit=500&status=bogus", fields: []string{"page", "limit", "status"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, err := parseOrderListQuery(httptest.NewRequest(http.MethodGet, tc.url, nil))
			if tc.fields == nil {
				require.NoError(t, err)
				require.Equal(t, tc.want, query)
				return
			}
			appErr, ok := errs.As(err)
			require.True(t, ok)
			require.Len(t, appErr.Fields, len(tc.fields))
			for i, f := range tc.fields {
				require.Equal(t, f, appErr.Fields[i].Field)
			}
		})
	}
}

func TestHandshakeToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	require.Equal(t, "from-query", handshakeToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	require.Equal(t, "from-header", handshakeToken(req))

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Basic abc")
	require.Empty(t, handshakeToken(req))
}

func TestDecodeBody(t *testing.T) {
	var v map[string]any
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	err := decodeBody(req, &v)
	require.ErrorIs(t, err, errs.ValidationError)
}
