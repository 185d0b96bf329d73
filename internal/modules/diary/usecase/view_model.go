package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"caltrack/internal/modules/diary/domain"
	"caltrack/internal/modules/diary/dto"
	diaryin "caltrack/internal/modules/diary/port/in"
	diaryout "caltrack/internal/modules/diary/port/out"
	"caltrack/internal/platform/clock"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
)

// ViewModel holds the selected date and its visible record. Backend
// calls run without the lock held; their results are applied only when
// they still match the selected date, so a slow response for a date the
// user already left never overwrites what is on screen.
type ViewModel struct {
	api    diaryout.RecordAPI
	cache  diaryout.RecordCache
	logger *slog.Logger

	mu       sync.Mutex
	date     domain.Date
	target   float64
	record   domain.DailyRecord
	loading  bool
	degraded bool

	// seq numbers fetches; latest holds the newest one issued per date.
	// Only the newest fetch of a date may touch the cache or the screen.
	seq    uint64
	latest map[domain.Date]uint64
	// epoch changes on Reset; work started under an older epoch is dropped.
	epoch uint64
}

func NewViewModel(api diaryout.RecordAPI, cache diaryout.RecordCache, clk clock.Clock, logger *slog.Logger) diaryin.Usecase {
	return &ViewModel{
		api:    api,
		cache:  cache,
		logger: logging.Component(logger, "diary"),
		date:   domain.DateOf(clk.Now()),
		latest: map[domain.Date]uint64{},
	}
}

// Reset forgets every cached day and the visible record. It runs whenever
// the session changes hands so no record outlives the account it was
// fetched for. The selected date is kept.
func (vm *ViewModel) Reset() dto.DayState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.epoch++
	vm.latest = map[domain.Date]uint64{}
	vm.cache.Clear()
	vm.record = domain.DailyRecord{}
	vm.target = 0
	vm.loading = false
	vm.degraded = false
	return vm.snapshotLocked()
}

func (vm *ViewModel) Select(raw string) (dto.DayState, bool, error) {
	d, err := domain.ParseDate(raw)
	if err != nil {
		return vm.Snapshot(), false, err
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state, fetch := vm.selectLocked(d)
	return state, fetch, nil
}

func (vm *ViewModel) Step(days int) (dto.DayState, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selectLocked(vm.date.AddDays(days))
}

// selectLocked adopts a cached record synchronously or marks the day as
// loading. A day already loading does not ask for a second fetch.
func (vm *ViewModel) selectLocked(d domain.Date) (dto.DayState, bool) {
	if d == vm.date && vm.loading {
		return vm.snapshotLocked(), false
	}
	vm.date = d
	vm.degraded = false
	if cached, ok := vm.cache.Get(d); ok {
		vm.record = cached
		vm.loading = false
		return vm.snapshotLocked(), false
	}
	vm.record = domain.DailyRecord{}
	vm.loading = true
	return vm.snapshotLocked(), true
}

func (vm *ViewModel) Fetch(ctx context.Context, raw string) (dto.DayState, error) {
	d, err := domain.ParseDate(raw)
	if err != nil {
		return vm.Snapshot(), err
	}
	return vm.fetch(ctx, d, false)
}

// fetch loads d from the backend. The response fills the cache only when
// the date is absent, unless force is set, so a record mutated locally
// while the request was in flight is kept. A failed fetch leaves an
// empty, uncached record so the next visit retries. A response overtaken
// by a newer fetch of the same date, or by a Reset, changes nothing.
func (vm *ViewModel) fetch(ctx context.Context, d domain.Date, force bool) (dto.DayState, error) {
	vm.mu.Lock()
	vm.seq++
	token := vm.seq
	vm.latest[d] = token
	vm.mu.Unlock()

	record, fetchErr := vm.api.Get(ctx, d)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	newest := vm.latest[d] == token
	if newest {
		delete(vm.latest, d)
	}
	if fetchErr != nil {
		vm.logger.Warn("day fetch failed", slog.String("date", d.String()), slog.String("error", fetchErr.Error()))
		if !newest || d != vm.date || !vm.loading {
			return vm.snapshotLocked(), fmt.Errorf("fetch %s: %w", d, apperrors.ErrSuperseded)
		}
		vm.record = domain.DailyRecord{}
		vm.loading = false
		vm.degraded = true
		return vm.snapshotLocked(), fmt.Errorf("fetch %s: %w", d, fetchErr)
	}
	if !newest {
		vm.logger.Debug("discarding overtaken day response", slog.String("date", d.String()))
		return vm.snapshotLocked(), fmt.Errorf("fetch %s: %w", d, apperrors.ErrSuperseded)
	}

	record = domain.NewDailyRecord(record.FoodEntries)
	if cached, ok := vm.cache.Get(d); ok && !force {
		record = cached
	} else {
		vm.cache.Put(d, record)
	}
	if d != vm.date || !vm.loading {
		vm.logger.Debug("discarding stale day response", slog.String("date", d.String()), slog.String("selected", vm.date.String()))
		return vm.snapshotLocked(), fmt.Errorf("fetch %s: %w", d, apperrors.ErrSuperseded)
	}
	vm.record = record
	vm.loading = false
	vm.degraded = false
	return vm.snapshotLocked(), nil
}

func (vm *ViewModel) SelectDate(ctx context.Context, raw string) (dto.DayState, error) {
	state, fetch, err := vm.Select(raw)
	if err != nil || !fetch {
		return state, err
	}
	return vm.Fetch(ctx, state.Date)
}

func (vm *ViewModel) PreviousDay(ctx context.Context) (dto.DayState, error) {
	return vm.stepAndFetch(ctx, -1)
}

func (vm *ViewModel) NextDay(ctx context.Context) (dto.DayState, error) {
	return vm.stepAndFetch(ctx, 1)
}

func (vm *ViewModel) stepAndFetch(ctx context.Context, days int) (dto.DayState, error) {
	state, fetch := vm.Step(days)
	if !fetch {
		return state, nil
	}
	return vm.fetch(ctx, domain.Date(state.Date), false)
}

// Refresh drops the cached record of the selected date and reloads it.
func (vm *ViewModel) Refresh(ctx context.Context) (dto.DayState, error) {
	vm.mu.Lock()
	d := vm.date
	vm.cache.Invalidate(d)
	vm.record = domain.DailyRecord{}
	vm.loading = true
	vm.degraded = false
	vm.mu.Unlock()
	return vm.fetch(ctx, d, true)
}

// AddEntry scales candidate by servings and submits it for the date
// selected at call time.
func (vm *ViewModel) AddEntry(ctx context.Context, candidate dto.Candidate, servings string) (dto.DayState, error) {
	return vm.addEntry(ctx, vm.selected(), candidate, servings)
}

// AddEntryOn submits candidate for date whether or not date is still
// selected. Local state changes only after the backend accepted the entry.
func (vm *ViewModel) AddEntryOn(ctx context.Context, date string, candidate dto.Candidate, servings string) (dto.DayState, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return vm.Snapshot(), err
	}
	return vm.addEntry(ctx, d, candidate, servings)
}

func (vm *ViewModel) addEntry(ctx context.Context, d domain.Date, candidate dto.Candidate, servings string) (dto.DayState, error) {
	if strings.TrimSpace(candidate.Name) == "" {
		return vm.Snapshot(), fmt.Errorf("%w: food name is required", apperrors.ErrInvalidInput)
	}
	n, err := domain.ParseServings(servings)
	if err != nil {
		return vm.Snapshot(), err
	}

	vm.mu.Lock()
	if d == vm.date && vm.loading {
		state := vm.snapshotLocked()
		vm.mu.Unlock()
		return state, fmt.Errorf("add entry: %w", apperrors.ErrDayLoading)
	}
	epoch := vm.epoch
	vm.mu.Unlock()

	entry := domain.Candidate{
		Name:               strings.TrimSpace(candidate.Name),
		Calories:           candidate.Calories,
		Protein:            candidate.Protein,
		ServingWeightGrams: candidate.ServingWeightGrams,
	}.Scale(n)
	created, err := vm.api.Add(ctx, d, entry)
	if err != nil {
		vm.logger.Warn("add entry failed", slog.String("date", d.String()), slog.String("error", err.Error()))
		return vm.Snapshot(), fmt.Errorf("add entry: %w", err)
	}
	if strings.TrimSpace(created.Name) == "" {
		entry.ID = created.ID
		created = entry
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.epoch != epoch {
		return vm.snapshotLocked(), fmt.Errorf("add entry: %w", apperrors.ErrSuperseded)
	}
	vm.applyLocked(d, func(r domain.DailyRecord) domain.DailyRecord { return r.Append(created) })
	vm.logger.Info("entry added", slog.String("date", d.String()), slog.String("name", created.Name), slog.Float64("calories", created.Calories))
	return vm.snapshotLocked(), nil
}

// RemoveEntry deletes the visible entry at index. The entry is resolved
// to its backend id before the call, so later reordering cannot redirect
// the removal.
func (vm *ViewModel) RemoveEntry(ctx context.Context, index int) (dto.DayState, error) {
	d, id, epoch, err := vm.removalTarget(index)
	if err != nil {
		return vm.Snapshot(), err
	}
	return vm.removeEntry(ctx, d, id, epoch)
}

// RemoveEntryByID deletes entry id from date. The entry must be known
// locally, on screen or in the cache of date.
func (vm *ViewModel) RemoveEntryByID(ctx context.Context, date string, id int64) (dto.DayState, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return vm.Snapshot(), err
	}
	vm.mu.Lock()
	if d == vm.date && vm.loading {
		state := vm.snapshotLocked()
		vm.mu.Unlock()
		return state, fmt.Errorf("remove entry: %w", apperrors.ErrDayLoading)
	}
	record, known := vm.cache.Get(d)
	if d == vm.date {
		record, known = vm.record, true
	}
	if !known || !record.HasEntry(id) {
		state := vm.snapshotLocked()
		vm.mu.Unlock()
		return state, fmt.Errorf("%w: no entry %d on %s", apperrors.ErrInvalidInput, id, d)
	}
	epoch := vm.epoch
	vm.mu.Unlock()
	return vm.removeEntry(ctx, d, id, epoch)
}

func (vm *ViewModel) removeEntry(ctx context.Context, d domain.Date, id int64, epoch uint64) (dto.DayState, error) {
	if err := vm.api.Remove(ctx, id); err != nil {
		vm.logger.Warn("remove entry failed", slog.Int64("id", id), slog.String("error", err.Error()))
		return vm.Snapshot(), fmt.Errorf("remove entry %d: %w", id, err)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.epoch != epoch {
		return vm.snapshotLocked(), fmt.Errorf("remove entry %d: %w", id, apperrors.ErrSuperseded)
	}
	vm.applyLocked(d, func(r domain.DailyRecord) domain.DailyRecord { return r.WithoutID(id) })
	vm.logger.Info("entry removed", slog.String("date", d.String()), slog.Int64("id", id))
	return vm.snapshotLocked(), nil
}

func (vm *ViewModel) removalTarget(index int) (domain.Date, int64, uint64, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.loading {
		return "", 0, 0, fmt.Errorf("remove entry: %w", apperrors.ErrDayLoading)
	}
	if index < 0 || index >= len(vm.record.FoodEntries) {
		return "", 0, 0, fmt.Errorf("%w: no entry at index %d", apperrors.ErrInvalidInput, index)
	}
	entry := vm.record.FoodEntries[index]
	if !entry.HasID() {
		return "", 0, 0, fmt.Errorf("remove entry %q: %w", entry.Name, apperrors.ErrEntryWithoutID)
	}
	return vm.date, *entry.ID, vm.epoch, nil
}

func (vm *ViewModel) selected() domain.Date {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.date
}

// applyLocked runs a confirmed mutation against the cached record of d
// and, when d is still on screen, against the visible record. A day
// missing from the cache after a failed fetch stays uncached.
func (vm *ViewModel) applyLocked(d domain.Date, mutate func(domain.DailyRecord) domain.DailyRecord) {
	visible := d == vm.date && !vm.loading
	if cached, ok := vm.cache.Get(d); ok {
		updated := mutate(cached)
		vm.cache.Put(d, updated)
		if visible {
			vm.record = updated
		}
		return
	}
	if visible {
		vm.record = mutate(vm.record)
	}
}

func (vm *ViewModel) SetTarget(target float64) dto.DayState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.target = target
	return vm.snapshotLocked()
}

func (vm *ViewModel) Snapshot() dto.DayState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshotLocked()
}

func (vm *ViewModel) snapshotLocked() dto.DayState {
	entries := make([]dto.EntryOutput, 0, len(vm.record.FoodEntries))
	for _, e := range vm.record.FoodEntries {
		out := dto.EntryOutput{
			Name:               e.Name,
			Calories:           e.Calories,
			Protein:            e.Protein,
			ServingWeightGrams: e.ServingWeightGrams,
		}
		if e.ID != nil {
			out.ID = *e.ID
			out.HasID = true
		}
		entries = append(entries, out)
	}
	consumed := vm.record.TotalCalories
	return dto.DayState{
		Date:      vm.date.String(),
		Loading:   vm.loading,
		Degraded:  vm.degraded,
		Target:    vm.target,
		Consumed:  consumed,
		Remaining: vm.target - consumed,
		Entries:   entries,
	}
}
