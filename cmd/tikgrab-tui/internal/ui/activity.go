package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/iconidentify/tikgrab/internal/domain"
)

var severityColors = map[domain.EventSeverity]string{
	domain.EventSeverityInfo:    "white",
	domain.EventSeverityWarning: "yellow",
	domain.EventSeverityError:   "red",
	domain.EventSeveritySuccess: "green",
}

// createActivityPanel creates the activity log panel.
func (a *App) createActivityPanel() {
	a.activityView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.activityView.SetBorder(true).SetTitle(" Activity ")
}

// refreshActivity reloads recent events. It runs on the event loop.
func (a *App) refreshActivity() {
	if a.activity == nil {
		a.activityView.SetText("[gray]Activity log disabled")
		return
	}

	ctx, cancel := context.WithTimeout(a.ctx, 2*time.Second)
	defer cancel()

	res, err := a.activity.Query(ctx, domain.EventQuery{Limit: 100})
	if err != nil {
		a.activityView.SetText(fmt.Sprintf("[red]Error: %v", err))
		return
	}
	a.activityView.SetText(formatEvents(res.Events))
	a.activityView.ScrollToBeginning()
}

func formatEvents(events []domain.Event) string {
	if len(events) == 0 {
		return "[gray]No activity yet"
	}
	var b strings.Builder
	for _, e := range events {
		color := severityColors[e.Severity]
		if color == "" {
			color = "white"
		}
		fmt.Fprintf(&b, "[gray]%s[white] [%s]%-7s[white] %-8s %s\n",
			e.Timestamp.Format("15:04:05"), color, e.Severity, e.Category, tview.Escape(e.Message))
	}
	return b.String()
}
