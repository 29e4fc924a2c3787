package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/grafana-cube-datasource/internal/config"
	"github.com/grafana/grafana-cube-datasource/internal/testutil"
	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(
		config.ServiceConfig{URL: srv.URL, Token: "secret"},
		WithLogger(testutil.NewTestLogger(t)),
	)
}

func TestClient_Meta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/meta", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		_, _ = w.Write([]byte(`{"cubes":[{
			"name": "orders",
			"dimensions": [{"name": "orders.status"}],
			"measures": [{"name": "orders.count"}]
		}]}`))
	})

	meta, err := c.Meta(context.Background())
	require.NoError(t, err)
	require.Len(t, meta.Cubes, 1)

	members := meta.Members()
	assert.Contains(t, members, "orders.status")
	assert.Contains(t, members, "orders.count")
}

func TestClient_CompileSQL(t *testing.T) {
	var gotBody struct {
		Query cube.NormalizedQuery `json:"query"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sql", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"sql":"SELECT status FROM orders"}`))
	})

	q := cube.NormalizedQuery{
		Dimensions: []string{"orders.status"},
		Limit:      cube.LimitOf(0),
	}
	sql, err := c.CompileSQL(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT status FROM orders", sql)

	// The request body carries the canonical query untouched, limit zero
	// included.
	assert.Equal(t, q, gotBody.Query)
}

func TestClient_Load(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/load", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"orders.status":"active"}]}`))
	})

	res, err := c.Load(context.Background(), cube.NormalizedQuery{Dimensions: []string{"orders.status"}})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "active", res.Data[0]["orders.status"])
}

func TestClient_TagValues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Field string `json:"field"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "orders.status", body.Field)
		_, _ = w.Write([]byte(`{"values":["active","cancelled"]}`))
	})

	values, err := c.TagValues(context.Background(), "orders.status")
	require.NoError(t, err)
	assert.Equal(t, []string{"active", "cancelled"}, values)
}

func TestClient_Errors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := c.Meta(context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		_, err := c.Meta(context.Background())

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
		assert.Equal(t, "boom", apiErr.Body)
	})

	t.Run("canceled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Meta(ctx)
		assert.Error(t, err)
	})
}
