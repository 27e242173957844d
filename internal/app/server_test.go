package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/orgball2608/tint-feed/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCards(view feed.View[[]feed.Card]) CardsFunc {
	return func() feed.View[[]feed.Card] { return view }
}

func TestHttpServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Rollbacks.Inc()

	cfg := &config.Config{}
	cfg.App.Port = 8080
	srv := newHttpServer(logger.NewNop(), cfg, reg, staticCards(feed.View[[]feed.Card]{}))
	assert.Equal(t, ":8080", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tint_cache_rollbacks_total 1")
}

func TestFeedHandler(t *testing.T) {
	cfg := &config.Config{}

	tests := []struct {
		name    string
		method  string
		view    feed.View[[]feed.Card]
		status  int
		cards   int
		loading bool
		hasErr  bool
	}{
		{
			name:   "cards",
			method: http.MethodGet,
			view: feed.View[[]feed.Card]{
				HasData: true,
				Data:    []feed.Card{{PostID: "p1", AuthorName: "Ana Lima", Likes: "2", LikedByViewer: true}},
			},
			status: http.StatusOK,
			cards:  1,
		},
		{
			name:    "first load",
			method:  http.MethodGet,
			view:    feed.View[[]feed.Card]{IsLoading: true, IsFetching: true},
			status:  http.StatusOK,
			loading: true,
		},
		{
			name:   "stale data with error",
			method: http.MethodGet,
			view: feed.View[[]feed.Card]{
				HasData: true,
				Data:    []feed.Card{{PostID: "p1"}},
				Err:     errors.ErrNetwork,
			},
			status: http.StatusOK,
			cards:  1,
			hasErr: true,
		},
		{
			name:   "error without data",
			method: http.MethodGet,
			view:   feed.View[[]feed.Card]{Err: errors.ErrNetwork},
			status: http.StatusServiceUnavailable,
			hasErr: true,
		},
		{
			name:   "wrong method",
			method: http.MethodPost,
			status: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newHttpServer(logger.NewNop(), cfg, prometheus.NewRegistry(), staticCards(tt.view))

			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/feed", nil))
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusMethodNotAllowed {
				return
			}

			var resp feedResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Len(t, resp.Cards, tt.cards)
			assert.Equal(t, tt.loading, resp.IsLoading)
			assert.Equal(t, tt.hasErr, resp.Error != "")
		})
	}
}
