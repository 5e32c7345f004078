package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malexanderboyd/godr4ft/internal/game"
)

func TestRatingsMergesSets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ratings", r.URL.Path)
		var list []CardRating
		switch r.URL.Query().Get("set") {
		case "tst":
			list = []CardRating{{Name: "Lightning Bolt", Rating: 4.5}}
		case "abc":
			list = []CardRating{{Name: "Grizzly Bears", Rating: 1.5}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}))
	defer server.Close()

	c, err := NewClient(Options{BaseURL: server.URL + "/", Rate: 100})
	require.NoError(t, err)

	ratings, err := c.Ratings(context.Background(), []string{"tst", "abc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Lightning Bolt": 4.5, "Grizzly Bears": 1.5}, ratings)
}

func TestRatingsServiceErrorIsExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewClient(Options{BaseURL: server.URL, Rate: 100})
	require.NoError(t, err)

	_, err = c.Ratings(context.Background(), []string{"tst"})
	require.Error(t, err)
	assert.Equal(t, game.ExternalServiceError, game.KindOf(err))
	assert.Equal(t, game.CodeExternal, game.CodeOf(err))
}

func TestRatingsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c, err := NewClient(Options{BaseURL: server.URL, Rate: 100, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Ratings(context.Background(), []string{"tst"})
	assert.Equal(t, game.ExternalServiceError, game.KindOf(err))
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Equal(t, game.CodeValidation, game.CodeOf(err))

	c, err := NewClient(Options{BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.NotNil(t, c.limiter)
}
