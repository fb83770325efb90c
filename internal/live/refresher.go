package live

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
)

type Snapshotter interface {
	Snapshot(ctx context.Context) (repo.Snapshot, error)
}

// Refresher turns invalidation events into freshly computed dashboards.
type Refresher struct {
	bus       Bus
	store     Snapshotter
	hub       *Hub
	threshold int
	now       func() time.Time

	pending    chan struct{}
	recomputes atomic.Uint64
}

func NewRefresher(bus Bus, store Snapshotter, hub *Hub, threshold int, now func() time.Time) *Refresher {
	if now == nil {
		now = time.Now
	}
	return &Refresher{
		bus:       bus,
		store:     store,
		hub:       hub,
		threshold: threshold,
		now:       now,
		pending:   make(chan struct{}, 1),
	}
}

// Run blocks until ctx is done. Events that arrive while a recompute is in flight
// collapse into a single follow-up recompute.
func (r *Refresher) Run(ctx context.Context) error {
	events, cancel, err := r.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Kind != KindProductsUpdated {
					continue
				}
				select {
				case r.pending <- struct{}{}:
				default:
				}
			}
		}
	}()

	obs.Logger.Info("refresher started")
	for {
		select {
		case <-ctx.Done():
			obs.Logger.Info("refresher stopped", "recomputes", r.recomputes.Load())
			return nil
		case <-r.pending:
			if _, err := r.Refresh(ctx); err != nil {
				obs.Logger.Error("dashboard refresh failed", "err", err)
			}
		}
	}
}

// Refresh re-reads the store, recomputes the dashboard and broadcasts it.
func (r *Refresher) Refresh(ctx context.Context) (inventory.DashboardSnapshot, error) {
	snap, err := r.store.Snapshot(ctx)
	if err != nil {
		return inventory.DashboardSnapshot{}, err
	}
	dash := inventory.ComputeDashboardMetrics(snap.Products, snap.Categories, r.now(), r.threshold)
	r.recomputes.Add(1)
	r.hub.Broadcast(Update{Event: KindProductsUpdated, Dashboard: dash})
	return dash, nil
}

func (r *Refresher) Recomputes() uint64 {
	return r.recomputes.Load()
}
