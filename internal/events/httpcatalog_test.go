package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediauploader/internal/common"
)

func TestHTTPCatalog_QueryEvents(t *testing.T) {
	secret := []byte("s3cret")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "42", q.Get("organization_ids"))
		assert.NotEmpty(t, q.Get("starts_at_min"))
		assert.NotEmpty(t, q.Get("starts_at_max"))

		auth := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(auth, "Bearer "))
		token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (any, error) {
			return secret, nil
		})
		require.NoError(t, err)
		require.True(t, token.Valid)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[
			{"id":2,"name":"late show","starts_at":"2024-06-01T21:00:00Z"},
			{"id":1,"name":"early show","starts_at":"2024-06-01T19:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewHTTPCatalog(srv.URL, secret)
	evs, err := c.QueryEvents(context.Background(), 42,
		time.Date(2024, 5, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, evs, 2)
	assert.Equal(t, 1, evs[0].ID, "events must be sorted by start time")
	assert.Equal(t, 2, evs[1].ID)
	assert.Equal(t, "early show", evs[0].Name)
}

func TestHTTPCatalog_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPCatalog(srv.URL, []byte("s"))
	_, err := c.QueryEvents(context.Background(), 1, time.Now().Add(-time.Hour), time.Now())
	require.ErrorIs(t, err, common.ErrorCatalogStatus)
}

func TestHTTPCatalog_BadStartsAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values":[{"id":1,"name":"x","starts_at":"tomorrow"}]}`))
	}))
	defer srv.Close()

	c := NewHTTPCatalog(srv.URL, []byte("s"))
	_, err := c.QueryEvents(context.Background(), 1, time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
}
