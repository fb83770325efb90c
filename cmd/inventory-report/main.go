// Command inventory-report logs into a running inventory dashboard, pulls the
// product and category records and prints the dashboard figures and a product
// list page computed locally. The filtered list can also be written to a CSV or
// XLSX file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/client"
	"github.com/rogerio-castellano/inventory-dashboard/internal/export"
	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
	"github.com/spf13/pflag"
)

type options struct {
	baseURL   string
	username  string
	password  string
	threshold int
	currency  string
	search    string
	category  string
	stock     string
	sort      string
	page      int
	pageSize  int
	out       string
	timeout   time.Duration
	verbose   bool
}

func main() {
	var opts options
	fs := pflag.NewFlagSet("inventory-report", pflag.ExitOnError)
	fs.StringVar(&opts.baseURL, "url", envOr("INVENTORY_URL", "http://localhost:8080"), "dashboard base URL")
	fs.StringVarP(&opts.username, "user", "u", envOr("INVENTORY_USER", "admin"), "username")
	fs.StringVarP(&opts.password, "password", "p", os.Getenv("INVENTORY_PASSWORD"), "password")
	fs.IntVar(&opts.threshold, "threshold", inventory.DefaultLowStockThreshold, "low stock threshold")
	fs.StringVar(&opts.currency, "currency", "₹", "currency symbol")
	fs.StringVarP(&opts.search, "search", "s", "", "case-insensitive name filter")
	fs.StringVarP(&opts.category, "category", "c", inventory.AllCategories, "category name filter")
	fs.StringVar(&opts.stock, "stock", string(inventory.StockAll), "stock filter: All, In or Out")
	fs.StringVar(&opts.sort, "sort", "", "sort key: price-asc, price-desc, qty-asc or qty-desc")
	fs.IntVar(&opts.page, "page", 1, "page to print")
	fs.IntVar(&opts.pageSize, "page-size", inventory.DefaultPageSize, "rows per page")
	fs.StringVarP(&opts.out, "out", "o", "", "write the filtered list to a .csv or .xlsx file")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall request timeout")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")
	_ = fs.Parse(os.Args[1:])

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	obs.InitLogger(level)

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "inventory-report:", err)
		if errors.Is(err, client.ErrInvalidCredentials) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(opts options, w io.Writer) error {
	stock, err := inventory.ParseStockFilter(opts.stock)
	if err != nil {
		return err
	}
	sortKey, err := inventory.ParseSortKey(opts.sort)
	if err != nil {
		return err
	}
	format, err := outputFormat(opts.out)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	c := client.NewRecordStoreClient(opts.baseURL)
	session, err := c.Login(ctx, opts.username, opts.password)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Logout(context.Background(), session); err != nil {
			obs.Logger.Debug("logout failed", "err", err)
		}
	}()

	snap, err := c.Snapshot(ctx, session)
	if err != nil {
		return err
	}

	dash := inventory.ComputeDashboardMetrics(snap.Products, snap.Categories, time.Now(), opts.threshold)
	printDashboard(w, dash, opts.currency)

	filter := inventory.FilterState{
		Search:            opts.search,
		Category:          opts.category,
		Stock:             stock,
		Sort:              sortKey,
		Page:              opts.page,
		PageSize:          opts.pageSize,
		LowStockThreshold: opts.threshold,
	}
	view := inventory.ComputeProductListView(snap.Products, snap.Categories, filter)
	printListView(w, view, opts.currency)

	if opts.out == "" {
		return nil
	}
	rows := inventory.ProcessProducts(snap.Products, snap.Categories, filter)
	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.out, err)
	}
	if err := export.Write(f, format, rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nWrote %d rows to %s\n", len(rows), opts.out)
	return nil
}

func outputFormat(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.FormatCSV, nil
	case ".xlsx":
		return export.FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported output file %q, use .csv or .xlsx", path)
}

func printDashboard(w io.Writer, d inventory.DashboardSnapshot, currency string) {
	fmt.Fprintf(w, "Inventory as of %s\n\n", d.AsOf.Format(time.RFC1123))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total products\t%d\n", d.TotalProducts)
	fmt.Fprintf(tw, "Low stock (< %d)\t%d\n", d.LowStockThreshold, d.LowStock)
	fmt.Fprintf(tw, "Out of stock\t%d\n", d.OutOfStock)
	fmt.Fprintf(tw, "Total value\t%s\n", inventory.FormatCurrency(currency, d.TotalValue))
	fmt.Fprintf(tw, "Sold today\t%d units, %s\n", d.DailySales.Units, inventory.FormatCurrency(currency, d.DailySales.Revenue))
	tw.Flush()

	if len(d.ValueByCategory) > 0 {
		fmt.Fprintln(w, "\nValue by category")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, cv := range d.ValueByCategory {
			fmt.Fprintf(tw, "  %s\t%s\n", cv.Category, inventory.FormatCurrency(currency, cv.Value))
		}
		tw.Flush()
	}

	if len(d.RecentActivity) > 0 {
		fmt.Fprintln(w, "\nRecent activity")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, a := range d.RecentActivity {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", a.Clock, a.Type, a.Product)
		}
		tw.Flush()
	}
}

func printListView(w io.Writer, v inventory.ListViewSnapshot, currency string) {
	fmt.Fprintf(w, "\nProducts: %d matching, page %d of %d (in stock %d, low %d, out %d)\n",
		v.TotalCount, v.Page, v.TotalPages, v.InStock, v.LowStock, v.OutOfStock)
	if len(v.Rows) == 0 {
		fmt.Fprintln(w, "  no products")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tCATEGORY\tPRICE\tQTY\tSTATUS")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\n", r.Name, r.Category, inventory.FormatCurrency(currency, r.Price), r.Quantity, r.Status)
	}
	tw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
