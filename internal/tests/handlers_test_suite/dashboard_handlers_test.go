package handlers_test_suite

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	handler "github.com/rogerio-castellano/inventory-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-dashboard/internal/http/router"
	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/live"
)

func getDashboard(t *testing.T, r http.Handler) handler.DashboardResult {
	t.Helper()
	w := doRequest(r, http.MethodGet, "/metrics/dashboard", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res handler.DashboardResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	return res
}

func TestGetDashboardMetricsHandler(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()
	seedCatalog(r)

	res := getDashboard(t, r)
	if res.TotalProducts != 6 || res.LowStock != 2 || res.OutOfStock != 1 {
		t.Errorf("expected 6 products, 2 low, 1 out; got %d, %d, %d", res.TotalProducts, res.LowStock, res.OutOfStock)
	}
	if res.TotalValueFormatted != "$7,395" {
		t.Errorf("expected total value $7,395, got %s", res.TotalValueFormatted)
	}
	if len(res.ValueByCategory) != 2 ||
		res.ValueByCategory[0].Category != "Electronics" || res.ValueByCategory[0].Value.String() != "6600" ||
		res.ValueByCategory[1].Category != "Kitchen" || res.ValueByCategory[1].Value.String() != "795" {
		t.Errorf("unexpected value by category %+v", res.ValueByCategory)
	}
	if res.DailySales.Units != 0 || res.DailyRevenueFormatted != "$0" {
		t.Errorf("expected no sales yet, got %d units for %s", res.DailySales.Units, res.DailyRevenueFormatted)
	}
	if !res.AsOf.Equal(fixedNow) || res.LowStockThreshold != threshold {
		t.Errorf("unexpected as_of %v or threshold %d", res.AsOf, res.LowStockThreshold)
	}

	laptop, _ := productRepo.GetByName("Laptop")
	mug, _ := productRepo.GetByName("Mug")
	chair, _ := productRepo.GetByName("Chair")
	for id, delta := range map[string]int{laptop.ID.String(): -2, mug.ID.String(): -10, chair.ID.String(): -5} {
		if w := adjustProduct(r, id, handler.QuantityAdjustmentRequest{Delta: delta}); w.Code != http.StatusOK {
			t.Fatalf("adjust failed: %d", w.Code)
		}
	}

	res = getDashboard(t, r)
	if res.DailySales.Units != 12 || res.DailyRevenueFormatted != "$2,050" {
		t.Errorf("expected 12 units for $2,050, got %d for %s", res.DailySales.Units, res.DailyRevenueFormatted)
	}
	if res.TotalValueFormatted != "$5,345" {
		t.Errorf("expected total value $5,345, got %s", res.TotalValueFormatted)
	}
	sold := map[string]int{}
	for _, s := range res.DailySales.ChartData {
		sold[s.Name] = s.Qty
	}
	if len(sold) != 2 || sold["Laptop"] != 2 || sold["Mug"] != 10 {
		t.Errorf("inactive categories must not count as sales, got %+v", res.DailySales.ChartData)
	}
	if len(res.RecentActivity) != inventory.RecentActivityLimit {
		t.Fatalf("expected %d activity entries, got %d", inventory.RecentActivityLimit, len(res.RecentActivity))
	}
	for _, a := range res.RecentActivity {
		if a.Product == "Chair" {
			t.Errorf("inactive product in activity feed: %+v", a)
		}
		if a.Clock != "3:00:00 PM" {
			t.Errorf("unexpected clock %q", a.Clock)
		}
	}
}

func TestGetDashboardMetricsHandler_Empty(t *testing.T) {
	res := getDashboard(t, router.NewRouter())
	if res.TotalProducts != 0 || res.TotalValueFormatted != "$0" {
		t.Errorf("unexpected empty dashboard %+v", res)
	}
	if res.ValueByCategory == nil || res.RecentActivity == nil || res.DailySales.ChartData == nil {
		t.Errorf("empty collections must be encoded as [] not null")
	}
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, resp *http.Response) <-chan sseEvent {
	t.Helper()
	out := make(chan sseEvent, 16)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(resp.Body)
		var ev sseEvent
		for sc.Scan() {
			line := sc.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			case line == "" && ev.name != "":
				out <- ev
				ev = sseEvent{}
			}
		}
	}()
	return out
}

func TestLiveHandler_StreamsDashboardUpdates(t *testing.T) {
	t.Cleanup(clearAll)
	r := router.NewRouter()
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/live?token="+token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("could not open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	events := readEvents(t, resp)

	first := <-events
	if first.name != live.KindProductsUpdated {
		t.Fatalf("expected initial %s event, got %+v", live.KindProductsUpdated, first)
	}

	mustCreateProduct(r, "Streamed", "", "9.99", 2)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("stream closed before the update arrived")
			}
			var dash handler.DashboardResult
			if err := json.Unmarshal([]byte(ev.data), &dash); err != nil {
				t.Fatalf("bad event payload: %v", err)
			}
			if dash.TotalProducts == 1 && dash.LowStock == 1 {
				return
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for the dashboard update")
		}
	}
}

func TestLiveHandler_RequiresToken(t *testing.T) {
	w := doRequest(router.NewRouter(), http.MethodGet, "/live", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
