package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", opts...)
}

func TestClientList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/activities", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":"a","title":"Film night","category":"film","date":"2024-01-01T19:00:00Z","city":"London","venue":"Odeon"},
			{"id":"b","title":"Wine tasting","category":"drinks","date":"2024-01-02T18:30:00","city":"Paris","venue":"Cave"}
		]`)
	})

	activities, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, "a", activities[0].ID)
	assert.Equal(t, constants.CategoryFilm, activities[0].Category)
	assert.True(t, activities[0].Date.Equal(time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)))
	// Dates without an offset are read as UTC
	assert.True(t, activities[1].Date.Equal(time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC)))
}

func TestClientListBadDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"a","title":"x","date":"yesterday"}]`)
	})

	_, err := client.List(context.Background())
	assert.ErrorContains(t, err, "invalid activity date")
}

func TestClientDetailsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/activities/missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":"not_found","message":"activity not found"}`)
	})

	_, err := client.Details(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "activity not found", statusErr.Body)
}

func TestClientCreateSendsBodyAndToken(t *testing.T) {
	var received WireActivity
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}, WithToken("secret-token"))

	activity := models.Activity{
		ID:       "new-id",
		Title:    "Concert",
		Category: constants.CategoryMusic,
		Date:     time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC),
		City:     "Berlin",
		Venue:    "Arena",
	}
	require.NoError(t, client.Create(context.Background(), activity))

	assert.Equal(t, "new-id", received.ID)
	assert.Equal(t, "music", received.Category)
	assert.Equal(t, "2024-05-01T20:00:00Z", received.Date)
}

func TestClientUpdateAndDeletePaths(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.Update(ctx, models.Activity{ID: "x", Date: time.Now()}))
	require.NoError(t, client.Delete(ctx, "x"))

	assert.Equal(t, []string{"PUT /api/activities/x", "DELETE /api/activities/x"}, calls)
}

func TestClientUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.Delete(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, WithTimeout(time.Second))
	_, err := client.List(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr), "transport failures are not status errors")
}

func TestParseWireDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-01-01T10:00:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"2024-01-01T10:00:00+02:00", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), false},
		{"2024-01-01T10:00:00.123", time.Date(2024, 1, 1, 10, 0, 0, 123000000, time.UTC), false},
		{"2024-01-01T10:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWireDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestClientTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := NewClient("http://example.test/api", WithHTTPClient(shared), WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.Equal(t, time.Minute, shared.Timeout)

	c = NewClient("http://example.test/api", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.Zero(t, http.DefaultClient.Timeout)

	// option order does not matter
	c = NewClient("http://example.test/api", WithTimeout(2*time.Second), WithHTTPClient(shared))
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
}

func TestClientNilHTTPClientKeepsDefault(t *testing.T) {
	var c *Client
	require.NotPanics(t, func() {
		c = NewClient("http://example.test/api", WithHTTPClient(nil), WithTimeout(time.Second))
	})
	require.NotNil(t, c.httpClient)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestToWireKeepsSubSecondPrecision(t *testing.T) {
	date := time.Date(2024, 5, 1, 20, 0, 0, 123456789, time.UTC)
	w := ToWire(models.Activity{ID: "a", Date: date})
	assert.Equal(t, "2024-05-01T20:00:00.123456789Z", w.Date)

	back, err := FromWire(w)
	require.NoError(t, err)
	assert.True(t, back.Date.Equal(date), "round trip = %v, want %v", back.Date, date)

	whole := ToWire(models.Activity{ID: "b", Date: time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)})
	assert.Equal(t, "2024-05-01T20:00:00Z", whole.Date)
}
