package app

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/orgball2608/tint-feed/internal/feed"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CardsFunc returns the rendered feed for the signed-in viewer.
type CardsFunc func() feed.View[[]feed.Card]

type feedResponse struct {
	Cards      []feed.Card `json:"cards"`
	IsLoading  bool        `json:"is_loading"`
	IsFetching bool        `json:"is_fetching"`
	Error      string      `json:"error,omitempty"`
}

func newHttpServer(log logger.Logger, cfg *config.Config, reg *prometheus.Registry, cards CardsFunc) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		feedHandler(w, r, log, cards)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: mux,
	}
}

func startHttpServer(log logger.Logger, srv *http.Server) {
	log.Info(fmt.Sprintf("Starting server on %s", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server failed to start", "error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Debug("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func feedHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger, cards CardsFunc) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	view := cards()
	resp := feedResponse{
		Cards:      view.Data,
		IsLoading:  view.IsLoading,
		IsFetching: view.IsFetching,
	}
	if resp.Cards == nil {
		resp.Cards = []feed.Card{}
	}

	status := http.StatusOK
	if view.Err != nil {
		resp.Error = errors.UserMessage(view.Err)
		if !view.HasData {
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to write feed response", "error", err)
	}
}
