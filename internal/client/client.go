// Package client talks to the inventory API on behalf of one authenticated user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSessionInvalid     = errors.New("session is invalid, log in again")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrServiceUnavailable = errors.New("inventory service unavailable or returned an error")
)

// Session carries the access token of one login. A 401 from the server marks it
// invalid and every later call made with it fails fast.
type Session struct {
	Token     string
	ExpiresAt time.Time
	invalid   atomic.Bool
}

func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && !s.invalid.Load()
}

func (s *Session) Invalidate() {
	s.invalid.Store(true)
}

type RecordStoreClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRecordStoreClient(baseURL string) *RecordStoreClient {
	return &RecordStoreClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *RecordStoreClient) Login(ctx context.Context, username, password string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &Session{Token: out.Token, ExpiresAt: out.ExpiresAt}, nil
}

func (c *RecordStoreClient) Logout(ctx context.Context, s *Session) error {
	err := c.do(ctx, s, http.MethodPost, "/logout", nil)
	if s != nil {
		s.Invalidate()
	}
	return err
}

func (c *RecordStoreClient) do(ctx context.Context, s *Session, method, path string, out any) error {
	if !s.Valid() {
		return ErrSessionInvalid
	}
	url := c.baseURL + path
	obs.Logger.Debug("record store request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		s.Invalidate()
		return ErrSessionInvalid
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status code %d: %s", ErrServiceUnavailable, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

type productDTO struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	CategoryID   *uuid.UUID          `json:"category_id"`
	Category     string              `json:"category"`
	Price        decimal.Decimal     `json:"price"`
	Quantity     int                 `json:"quantity"`
	StockHistory []models.StockEvent `json:"stock_history"`
}

// FetchProducts returns every product with its stock history.
func (c *RecordStoreClient) FetchProducts(ctx context.Context, s *Session) ([]models.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, s, http.MethodGet, "/products?with_history=true", &dtos); err != nil {
		return nil, err
	}
	products := make([]models.Product, len(dtos))
	for i, d := range dtos {
		p := models.Product{
			ID:           d.ID,
			Name:         d.Name,
			Category:     d.Category,
			Price:        d.Price,
			Quantity:     d.Quantity,
			StockHistory: d.StockHistory,
		}
		if d.CategoryID != nil {
			p.CategoryID = *d.CategoryID
		}
		products[i] = p
	}
	return products, nil
}

func (c *RecordStoreClient) FetchCategories(ctx context.Context, s *Session) ([]models.Category, error) {
	var categories []models.Category
	if err := c.do(ctx, s, http.MethodGet, "/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Snapshot fetches products and categories concurrently.
func (c *RecordStoreClient) Snapshot(ctx context.Context, s *Session) (repo.Snapshot, error) {
	var snap repo.Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Products, err = c.FetchProducts(ctx, s)
		return err
	})
	g.Go(func() (err error) {
		snap.Categories, err = c.FetchCategories(ctx, s)
		return err
	})
	if err := g.Wait(); err != nil {
		return repo.Snapshot{}, err
	}
	return snap, nil
}

// FetchDashboard asks the server for its own computation of the dashboard.
func (c *RecordStoreClient) FetchDashboard(ctx context.Context, s *Session) (inventory.DashboardSnapshot, error) {
	var dash inventory.DashboardSnapshot
	err := c.do(ctx, s, http.MethodGet, "/metrics/dashboard", &dash)
	return dash, err
}
