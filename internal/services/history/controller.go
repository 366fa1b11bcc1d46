// Package history retrieves the paginated, filterable transaction history.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/internal/domain"
	"github.com/vadiminshakov/walletctl/internal/transport"
)

const (
	historyPath = "/transactions/transactions"

	// DefaultLimit page size used when the query does not set one.
	DefaultLimit = 20
)

// Dispatcher is the subset of the transport layer this package needs.
type Dispatcher interface {
	Do(ctx context.Context, req transport.Request) (json.RawMessage, error)
}

// Controller fetches history pages. Every query gets a monotonically
// increasing sequence number; a result is applied to the visible state only
// if no newer query has been issued since, so out-of-order network replies
// never overwrite a later query's result. Superseded in-flight requests are
// not cancelled, their results are just discarded.
type Controller struct {
	dispatcher Dispatcher
	logger     *zap.Logger

	mu        sync.Mutex
	seq       uint64
	lastQuery domain.PageQuery
	visible   *domain.PageResult
}

// NewController creates the controller.
func NewController(dispatcher Dispatcher, logger *zap.Logger) *Controller {
	return &Controller{
		dispatcher: dispatcher,
		logger:     logger,
		lastQuery:  domain.PageQuery{Limit: DefaultLimit},
	}
}

// Query fetches a page. Returns domain.ErrSuperseded when a newer query was
// issued while this one was in flight; the visible state is left untouched
// in that case.
func (c *Controller) Query(ctx context.Context, q domain.PageQuery) (*domain.PageResult, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Skip < 0 {
		q.Skip = 0
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.lastQuery = q
	c.mu.Unlock()

	raw, err := c.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         historyPath,
		Query:        q.Values(),
		RequiresAuth: true,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Transactions []domain.TransactionRecord `json:"transactions"`
		Total        int                        `json:"total"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "decode history response")
	}

	result := &domain.PageResult{
		Records: payload.Transactions,
		Total:   payload.Total,
		Query:   q,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("discarding stale history response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seq))
		return nil, domain.ErrSuperseded
	}
	c.visible = result

	return result, nil
}

// ApplyFilters submits a filtered query. Filter submission always resets the
// offset to the first page.
func (c *Controller) ApplyFilters(ctx context.Context, f domain.HistoryFilters) (*domain.PageResult, error) {
	c.mu.Lock()
	limit := c.lastQuery.Limit
	c.mu.Unlock()

	return c.Query(ctx, domain.PageQuery{Skip: 0, Limit: limit, Filters: f})
}

// Page navigates to a 1-based page number keeping the current filters.
func (c *Controller) Page(ctx context.Context, page int) (*domain.PageResult, error) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	q := c.lastQuery
	c.mu.Unlock()

	q.Skip = (page - 1) * q.Limit
	return c.Query(ctx, q)
}

// Visible returns the currently visible page, nil before the first fetch.
func (c *Controller) Visible() *domain.PageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Transaction fetches a single record by id.
func (c *Controller) Transaction(ctx context.Context, id int64) (domain.TransactionRecord, error) {
	raw, err := c.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         fmt.Sprintf("%s/%d", historyPath, id),
		RequiresAuth: true,
	})
	if err != nil {
		return domain.TransactionRecord{}, err
	}

	var record domain.TransactionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.TransactionRecord{}, errors.Wrap(err, "decode transaction response")
	}
	return record, nil
}
