package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/alerts"
	"github.com/rogerio-castellano/inventory-dashboard/internal/auth"
	handler "github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	mw "github.com/rogerio-castellano/inventory-dashboard/internal/http/middleware"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/router"
	"github.com/rogerio-castellano/inventory-dashboard/internal/live"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/repo"
	"github.com/shopspring/decimal"
)

const (
	adminPassword = "secret"
	userPassword  = "user-secret"
	threshold     = 5
)

// fixedNow is the server clock for every test in this package; stock events are
// stamped with it so they count as "today" on the dashboard.
var fixedNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

var (
	token        string
	userToken    string
	productRepo  *repo.InMemoryProductRepository
	categoryRepo *repo.InMemoryCategoryRepository
	alertLog     *alerts.MemoryLog
	manager      *auth.Manager
	hub          *live.Hub
)

func init() {
	setupTestRepos()
	r := router.NewRouter()

	var err error
	token, err = generateToken(r, "admin", adminPassword)
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	userToken, err = generateToken(r, "clerk", userPassword)
	if err != nil {
		panic(fmt.Sprintf("error generating user token: %v", err))
	}
}

func setupTestRepos() {
	clock := func() time.Time { return fixedNow }

	categoryRepo = repo.NewInMemoryCategoryRepository()
	handler.SetCategoryRepo(categoryRepo)

	productRepo = repo.NewInMemoryProductRepository(categoryRepo)
	productRepo.SetClock(clock)
	handler.SetProductRepo(productRepo)

	userRepo := repo.NewInMemoryUserRepository()
	handler.SetUserRepo(userRepo)

	manager = auth.NewManager(userRepo, auth.NewMemorySessionStore(), auth.NewIssuer("test-secret", time.Hour))
	handler.SetSessionManager(manager)
	mw.SetSessionManager(manager)
	mw.SetRateLimit(1_000_000, 1_000_000)

	if _, err := manager.Register("admin", adminPassword, models.RoleAdmin); err != nil {
		panic(err)
	}
	if _, err := manager.Register("clerk", userPassword, models.RoleUser); err != nil {
		panic(err)
	}

	alertLog = alerts.NewMemoryLog()
	handler.SetNotifier(alerts.NewNotifier(alertLog, nil, threshold))

	bus := live.NewMemoryBus(64)
	hub = live.NewHub(8)
	handler.SetBus(bus)
	handler.SetHub(hub)

	handler.SetSettings(handler.Settings{
		LowStockThreshold: threshold,
		PageSize:          5,
		CurrencySymbol:    "$",
		Location:          time.UTC,
	})
	handler.SetClock(clock)

	refresher := live.NewRefresher(bus, repo.NewRecordStore(productRepo, categoryRepo), hub, threshold, clock)
	go refresher.Run(context.Background())
}

func clearAll() {
	productRepo.Clear()
	categoryRepo.Clear()
	alertLog.Drain(context.Background())
}

func generateToken(r http.Handler, username, password string) (string, error) {
	payload := handler.CredentialsRequest{Username: username, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return "", fmt.Errorf("login returned %d: %s", w.Code, w.Body.String())
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

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, "/products", p, token)
}

func mustCreateProduct(r http.Handler, name, category string, price string, qty int) handler.ProductResponse {
	w := createProduct(r, handler.ProductRequest{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	})
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("create %s: %d %s", name, w.Code, w.Body.String()))
	}
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func createCategory(r http.Handler, c handler.CategoryRequest) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, "/categories", c, token)
}

func mustCreateCategory(r http.Handler, name string, status models.CategoryStatus) handler.CategoryResponse {
	w := createCategory(r, handler.CategoryRequest{Name: name, Status: status})
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("create category %s: %d %s", name, w.Code, w.Body.String()))
	}
	var resp handler.CategoryResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func adjustProduct(r http.Handler, productID string, adj handler.QuantityAdjustmentRequest) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, "/products/"+productID+"/adjust", adj, token)
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}
