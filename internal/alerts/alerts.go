// Package alerts records products that drop to low or zero stock and mails a
// daily digest of them.
package alerts

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/rogerio-castellano/inventory-dashboard/internal/inventory"
	"github.com/rogerio-castellano/inventory-dashboard/internal/models"
	"github.com/rogerio-castellano/inventory-dashboard/internal/obs"
)

type Notifier struct {
	log       Log
	mailer    Mailer
	threshold int
	now       func() time.Time
}

// NewNotifier builds a Notifier. A nil mailer records alerts without sending mail.
func NewNotifier(log Log, mailer Mailer, threshold int) *Notifier {
	if threshold <= 0 {
		threshold = inventory.DefaultLowStockThreshold
	}
	return &Notifier{log: log, mailer: mailer, threshold: threshold, now: time.Now}
}

// Check records an alert when p is out of stock or below the threshold. It reports
// whether an alert was raised.
func (n *Notifier) Check(ctx context.Context, p models.Product) bool {
	if p.Quantity >= n.threshold {
		return false
	}
	e := Entry{
		ProductID: p.ID.String(),
		Product:   p.Name,
		Quantity:  p.Quantity,
		Threshold: n.threshold,
		Status:    inventory.StockStatus(p.Quantity, n.threshold),
		Time:      n.now(),
	}
	obs.Logger.Warn("product below low-stock threshold",
		"product", p.Name, "quantity", p.Quantity, "threshold", n.threshold)
	if err := n.log.Append(ctx, e); err != nil {
		obs.Logger.Error("failed to record stock alert", "product", p.Name, "err", err)
	}

	if n.mailer != nil {
		subject := fmt.Sprintf("⚠️ STOCK ALERT: %s %s", p.Name, e.Status)
		body := fmt.Sprintf("Product: %s\nQuantity: %d\nThreshold: %d\nTime: %s",
			p.Name, p.Quantity, n.threshold, e.Time.Format(time.RFC3339))
		go func() {
			if err := n.mailer.Send(subject, "text/plain", body); err != nil {
				obs.Logger.Error("failed to send alert email", "product", p.Name, "err", err)
			}
		}()
	}
	return true
}

// BuildDigest renders the entries as an HTML report. Products are listed by name
// with the number of alerts each raised that day.
func BuildDigest(entries []Entry) (subject, body string) {
	counts := map[string]int{}
	latest := map[string]Entry{}
	for _, e := range entries {
		counts[e.Product]++
		if prev, ok := latest[e.Product]; !ok || !e.Time.Before(prev.Time) {
			latest[e.Product] = e
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("<h2>📊 Daily Stock Alert Summary</h2>")
	fmt.Fprintf(&sb, "<p>Total alerts: <strong>%d</strong></p>", len(entries))

	sb.WriteString("<h3>📦 By Product</h3><ul>")
	for _, name := range names {
		last := latest[name]
		fmt.Fprintf(&sb, "<li><b>%s</b>: %d alerts, now %d (%s)</li>",
			html.EscapeString(name), counts[name], last.Quantity, html.EscapeString(last.Status))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h3>📋 Full Log</h3><ul>")
	for _, e := range entries {
		fmt.Fprintf(&sb, "<li><b>%s</b> dropped to %d at %s</li>",
			html.EscapeString(e.Product), e.Quantity, e.Time.Format(time.RFC822))
	}
	sb.WriteString("</ul>")

	return "📊 Daily Stock Alert Report", sb.String()
}

// SendDailyDigest drains the log and mails the digest. An empty log sends nothing.
// Without a mailer the drained entries are only counted in the log.
func (n *Notifier) SendDailyDigest(ctx context.Context) error {
	entries, err := n.log.Drain(ctx)
	if err != nil {
		return fmt.Errorf("drain alert log: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	if n.mailer == nil {
		obs.Logger.Info("daily stock alert digest not mailed, smtp disabled", "alerts", len(entries))
		return nil
	}
	subject, body := BuildDigest(entries)
	if err := n.mailer.Send(subject, "text/html", body); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	obs.Logger.Info("daily stock alert digest sent", "alerts", len(entries))
	return nil
}

// StartDailyDigest sends the digest every day at 23:59 in loc until ctx is done.
func (n *Notifier) StartDailyDigest(ctx context.Context, loc *time.Location) {
	for {
		timer := time.NewTimer(time.Until(nextDigest(n.now(), loc)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := n.SendDailyDigest(ctx); err != nil {
				obs.Logger.Error("daily digest failed", "err", err)
			}
		}
	}
}

func nextDigest(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, loc)
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
