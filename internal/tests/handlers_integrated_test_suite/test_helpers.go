package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/auth"
	"github.com/rogerio-castellano/inventory-dashboard/internal/db"
	handler "github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	mw "github.com/rogerio-castellano/inventory-dashboard/internal/http/middleware"
	"github.com/rogerio-castellano/inventory-dashboard/internal/live"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/redissvc"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
	"github.com/shopspring/decimal"
)

const adminPassword = "secret"

var (
	token        string
	database     *sql.DB
	productRepo  *repo.PostgresProductRepository
	categoryRepo *repo.PostgresCategoryRepository
)

// setupTestRepos wires the handlers to Postgres and, when redisAddr is set, keeps
// sessions and live events in Redis.
func setupTestRepos(dbURL, redisAddr string) error {
	var err error
	database, err = db.Connect(dbURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return err
	}

	categoryRepo = repo.NewPostgresCategoryRepository(database)
	handler.SetCategoryRepo(categoryRepo)
	productRepo = repo.NewPostgresProductRepository(database)
	handler.SetProductRepo(productRepo)
	userRepo := repo.NewPostgresUserRepository(database)
	handler.SetUserRepo(userRepo)

	var (
		store auth.SessionStore = auth.NewMemorySessionStore()
		bus   live.Bus          = live.NewMemoryBus(64)
	)
	if redisAddr != "" {
		rs, err := redissvc.Connect(redisAddr)
		if err != nil {
			return err
		}
		store = auth.NewRedisSessionStore(rs.Rdb())
		bus = live.NewRedisBus(rs.Rdb())
	}
	handler.SetBus(bus)

	manager := auth.NewManager(userRepo, store, auth.NewIssuer("integration-secret", time.Hour))
	handler.SetSessionManager(manager)
	mw.SetSessionManager(manager)
	mw.SetRateLimit(1_000_000, 1_000_000)

	if _, err := manager.Register("admin", adminPassword, models.RoleAdmin); err != nil && !errors.Is(err, repo.ErrDuplicatedValueUnique) {
		return fmt.Errorf("could not create admin: %w", err)
	}
	return nil
}

func clearAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := database.ExecContext(ctx, "TRUNCATE TABLE stock_events, products, categories CASCADE")
	if err != nil {
		fmt.Println(fmt.Errorf("failed to truncate inventory tables: %w", err))
	}
}

func clearAllUsersExceptAdmin() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := database.ExecContext(ctx, "DELETE FROM users WHERE username <> 'admin'")
	if err != nil {
		fmt.Println(fmt.Errorf("failed to delete users: %w", err))
	}
}

func generateToken(r http.Handler, username, password string) (string, error) {
	body, _ := json.Marshal(handler.CredentialsRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return "", fmt.Errorf("login returned %d", w.Code)
	}
	var resp handler.LoginResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func doRequest(r http.Handler, method, path string, payload any, bearer string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, name, category, price string, qty int) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, "/products", handler.ProductRequest{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}, token)
}

func adjustProduct(r http.Handler, productID string, delta int) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, "/products/"+productID+"/adjust", handler.QuantityAdjustmentRequest{Delta: delta}, token)
}
