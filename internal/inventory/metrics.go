package inventory

import (
	"sort"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

// RecentActivityLimit caps the activity feed.
const RecentActivityLimit = 6

type ActivityType string

const (
	ActivityStockAdded ActivityType = "Stock Added"
	ActivitySold       ActivityType = "Sold"
	ActivityUpdated    ActivityType = "Updated"
	ActivityLowStock   ActivityType = "Low Stock"
)

type CategoryValue struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

type ProductSales struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type DailySales struct {
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	ChartData []ProductSales  `json:"chart_data"`
}

type Activity struct {
	Product string       `json:"product"`
	Type    ActivityType `json:"type"`
	Time    time.Time    `json:"time"`
	Clock   string       `json:"clock"`
}

// DashboardSnapshot is the read-only result of ComputeDashboardMetrics.
type DashboardSnapshot struct {
	AsOf              time.Time       `json:"as_of"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	TotalProducts     int             `json:"total_products"`
	LowStock          int             `json:"low_stock"`
	OutOfStock        int             `json:"out_of_stock"`
	TotalValue        decimal.Decimal `json:"total_value"`
	ValueByCategory   []CategoryValue `json:"value_by_category"`
	DailySales        DailySales      `json:"daily_sales"`
	RecentActivity    []Activity      `json:"recent_activity"`
}

// ComputeDashboardMetrics folds the visible products into the dashboard figures.
// "Today" is the calendar date of now in now's location. A non-positive
// lowStockThreshold selects DefaultLowStockThreshold.
func ComputeDashboardMetrics(products []models.Product, categories []models.Category, now time.Time, lowStockThreshold int) DashboardSnapshot {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}

	catalog := NewCatalog(categories)
	active := catalog.ActiveProducts(products, FallbackNoCategories)

	snap := DashboardSnapshot{
		AsOf:              now,
		LowStockThreshold: lowStockThreshold,
		TotalProducts:     len(active),
		TotalValue:        decimal.Zero,
		ValueByCategory:   []CategoryValue{},
	}

	byCategory := map[string]int{}
	for _, p := range active {
		switch {
		case p.Quantity == 0:
			snap.OutOfStock++
		case IsLowStock(p.Quantity, lowStockThreshold):
			snap.LowStock++
		}

		value := p.Value()
		snap.TotalValue = snap.TotalValue.Add(value)

		name := catalog.CategoryName(p)
		idx, ok := byCategory[name]
		if !ok {
			idx = len(snap.ValueByCategory)
			byCategory[name] = idx
			snap.ValueByCategory = append(snap.ValueByCategory, CategoryValue{Category: name, Value: decimal.Zero})
		}
		snap.ValueByCategory[idx].Value = snap.ValueByCategory[idx].Value.Add(value)
	}

	snap.DailySales = dailySales(active, now)
	snap.RecentActivity = recentActivity(active, now, lowStockThreshold)
	return snap
}

func dailySales(products []models.Product, now time.Time) DailySales {
	ds := DailySales{Revenue: decimal.Zero, ChartData: []ProductSales{}}
	byName := map[string]int{}

	for _, p := range products {
		for _, ev := range p.StockHistory {
			if !SameDay(ev.Date, now) || ev.NewQty >= ev.PreviousQty {
				continue
			}
			sold := ev.PreviousQty - ev.NewQty
			ds.Units += sold
			ds.Revenue = ds.Revenue.Add(p.Price.Mul(decimal.NewFromInt(int64(sold))))

			idx, ok := byName[p.Name]
			if !ok {
				idx = len(ds.ChartData)
				byName[p.Name] = idx
				ds.ChartData = append(ds.ChartData, ProductSales{Name: p.Name})
			}
			ds.ChartData[idx].Qty += sold
		}
	}
	return ds
}

// classify labels a stock event. The Low Stock override applies to any event that
// leaves the product low, whatever the direction of the change.
func classify(ev models.StockEvent, lowStockThreshold int) ActivityType {
	t := ActivityUpdated
	switch {
	case ev.NewQty > ev.PreviousQty:
		t = ActivityStockAdded
	case ev.NewQty < ev.PreviousQty:
		t = ActivitySold
	}
	if IsLowStock(ev.NewQty, lowStockThreshold) {
		t = ActivityLowStock
	}
	return t
}

func recentActivity(products []models.Product, now time.Time, lowStockThreshold int) []Activity {
	feed := []Activity{}
	for _, p := range products {
		for _, ev := range p.StockHistory {
			if !SameDay(ev.Date, now) {
				continue
			}
			feed = append(feed, Activity{
				Product: p.Name,
				Type:    classify(ev, lowStockThreshold),
				Time:    ev.Date,
			})
		}
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Time.After(feed[j].Time)
	})
	if len(feed) > RecentActivityLimit {
		feed = feed[:RecentActivityLimit]
	}
	for i := range feed {
		feed[i].Clock = FormatClock(feed[i].Time.In(now.Location()))
	}
	return feed
}
