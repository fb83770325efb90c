package handlers

import (
	"context"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/alerts"
	"github.com/rogerio-castellano/inventory-dashboard/internal/auth"
	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/live"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
)

// Settings are the display and threshold knobs shared by the read endpoints.
type Settings struct {
	LowStockThreshold int
	PageSize          int
	CurrencySymbol    string
	Location          *time.Location
}

var (
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	userRepo     repo.UserRepository

	sessions *auth.Manager
	bus      live.Bus
	hub      *live.Hub
	notifier *alerts.Notifier

	settings = Settings{
		LowStockThreshold: inventory.DefaultLowStockThreshold,
		PageSize:          inventory.DefaultPageSize,
		CurrencySymbol:    "₹",
		Location:          time.Local,
	}
	clock = time.Now
)

func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}

func SetCategoryRepo(r repo.CategoryRepository) {
	categoryRepo = r
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

func SetSessionManager(m *auth.Manager) {
	sessions = m
}

func SetBus(b live.Bus) {
	bus = b
}

func SetHub(h *live.Hub) {
	hub = h
}

func SetNotifier(n *alerts.Notifier) {
	notifier = n
}

func SetSettings(s Settings) {
	if s.LowStockThreshold <= 0 {
		s.LowStockThreshold = inventory.DefaultLowStockThreshold
	}
	if s.PageSize <= 0 {
		s.PageSize = inventory.DefaultPageSize
	}
	if s.Location == nil {
		s.Location = time.Local
	}
	settings = s
}

// SetClock overrides the server clock used as "now" by the dashboard.
func SetClock(now func() time.Time) {
	clock = now
}

func now() time.Time {
	return clock().In(settings.Location)
}

func snapshot(ctx context.Context) (repo.Snapshot, error) {
	return repo.NewRecordStore(productRepo, categoryRepo).Snapshot(ctx)
}
