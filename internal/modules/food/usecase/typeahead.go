package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"caltrack/internal/modules/food/domain"
	"caltrack/internal/modules/food/dto"
	foodin "caltrack/internal/modules/food/port/in"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
)

// Typeahead waits for typing to pause before searching and keeps at most
// one search in flight: starting a query cancels the previous one.
type Typeahead struct {
	search   foodin.Usecase
	debounce time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewTypeahead(search foodin.Usecase, debounce time.Duration, logger *slog.Logger) *Typeahead {
	return &Typeahead{search: search, debounce: debounce, logger: logging.Component(logger, "typeahead")}
}

var _ foodin.Typeahead = (*Typeahead)(nil)

func (t *Typeahead) Query(ctx context.Context, text string) ([]dto.SearchResultOutput, error) {
	ctx, seq := t.begin(ctx)
	defer t.end(seq)

	if !domain.ShouldSearch(text) {
		return nil, nil
	}
	if t.debounce > 0 {
		timer := time.NewTimer(t.debounce)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, t.interrupted(ctx, seq)
		case <-timer.C:
		}
	}
	results, err := t.search.Search(ctx, text)
	if t.stale(seq) {
		t.logger.Debug("dropping superseded search", slog.String("query", text))
		return nil, fmt.Errorf("search %q: %w", text, apperrors.ErrSuperseded)
	}
	return results, err
}

// Cancel aborts the query in flight, if any.
func (t *Typeahead) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Typeahead) begin(parent context.Context) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.seq++
	t.cancel = cancel
	return ctx, t.seq
}

func (t *Typeahead) end(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq == seq && t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Typeahead) stale(seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq != seq
}

func (t *Typeahead) interrupted(ctx context.Context, seq uint64) error {
	if t.stale(seq) {
		return apperrors.ErrSuperseded
	}
	return ctx.Err()
}
