package employee

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/hr-portal/internal/core/events"
)

// Browser is the dashboard state: the current filter and the page it produced.
// It re-fetches the page whenever the employee list is invalidated.
type Browser struct {
	client *Client
	logger *slog.Logger

	mu      sync.RWMutex
	filter  Filter
	page    Page
	lastErr error

	unsubscribe func()
}

func NewBrowser(client *Client, bus *events.EventBus, filter Filter) *Browser {
	b := &Browser{
		client: client,
		logger: client.logger,
		filter: filter.withDefaults(),
	}
	if bus != nil {
		b.unsubscribe = bus.Subscribe(events.EventTypeEmployeesInvalidated, b.onInvalidated)
	}
	return b
}

func (b *Browser) onInvalidated(ctx context.Context, event events.Event) error {
	b.logger.Debug("employee list invalidated, reloading", "event_id", event.EventID())
	if _, err := b.Load(ctx); err != nil {
		b.logger.Warn("employee list reload failed", "error", err)
	}
	return nil
}

// Load fetches the page for the current filter.
func (b *Browser) Load(ctx context.Context) (Page, error) {
	b.mu.RLock()
	filter := b.filter
	b.mu.RUnlock()

	page, err := b.client.List(ctx, filter)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastErr = err
	if err != nil {
		return Page{}, err
	}
	b.page = page
	return page, nil
}

// SetFilter replaces the filter and loads its first page.
func (b *Browser) SetFilter(ctx context.Context, filter Filter) (Page, error) {
	filter.Page = DefaultPage
	b.mu.Lock()
	b.filter = filter.withDefaults()
	b.mu.Unlock()
	return b.Load(ctx)
}

func (b *Browser) GoToPage(ctx context.Context, page int) (Page, error) {
	b.mu.Lock()
	b.filter.Page = page
	b.filter = b.filter.withDefaults()
	b.mu.Unlock()
	return b.Load(ctx)
}

func (b *Browser) Current() (Filter, Page) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter, b.page
}

// Err returns the error of the latest load, if any.
func (b *Browser) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

func (b *Browser) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}
