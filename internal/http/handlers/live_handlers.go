package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/live"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
)

const heartbeatInterval = 25 * time.Second

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return rc.Flush()
}

// LiveHandler godoc
// @Summary Stream dashboard updates
// @Description Server-sent events. A productsUpdated event carrying the full dashboard is sent on connect and after every inventory change.
// @Tags metrics
// @Security BearerAuth
// @Produce text/event-stream
// @Param token query string false "Access token for clients that cannot set headers"
// @Success 200 {object} DashboardResult
// @Router /live [get]
func LiveHandler(w http.ResponseWriter, r *http.Request) {
	if hub == nil {
		http.Error(w, "live updates unavailable", http.StatusServiceUnavailable)
		return
	}

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	updates, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	dash, err := computeDashboard(r)
	if err == nil {
		err = writeEvent(w, rc, live.KindProductsUpdated, toDashboardResult(dash))
	}
	if err != nil {
		obs.Logger.Warn("live stream aborted", "err", err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, rc, u.Event, toDashboardResult(u.Dashboard)); err != nil {
				obs.Logger.Warn("live stream closed", "err", err)
				return
			}
		}
	}
}
