package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diaryout "caltrack/internal/modules/diary/adapter/out"
	"caltrack/internal/modules/diary/domain"
	"caltrack/internal/modules/diary/dto"
	diaryin "caltrack/internal/modules/diary/port/in"
	"caltrack/internal/modules/diary/usecase"
	"caltrack/internal/platform/clock"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/logging"
)

func ptr(v int64) *int64 { return &v }

type fakeAPI struct {
	mu        sync.Mutex
	records   map[domain.Date]domain.DailyRecord
	getErr    map[domain.Date]error
	gates     map[domain.Date]chan struct{}
	getCalls  map[domain.Date]int
	addErr    error
	removeErr error
	added     []domain.FoodEntry
	removed   []int64
	nextID    int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		records:  map[domain.Date]domain.DailyRecord{},
		getErr:   map[domain.Date]error{},
		gates:    map[domain.Date]chan struct{}{},
		getCalls: map[domain.Date]int{},
		nextID:   100,
	}
}

func (f *fakeAPI) Get(ctx context.Context, date domain.Date) (domain.DailyRecord, error) {
	f.mu.Lock()
	f.getCalls[date]++
	gate := f.gates[date]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.DailyRecord{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[date]; err != nil {
		return domain.DailyRecord{}, err
	}
	return f.records[date].Clone(), nil
}

func (f *fakeAPI) Add(_ context.Context, date domain.Date, entry domain.FoodEntry) (domain.FoodEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return domain.FoodEntry{}, f.addErr
	}
	f.nextID++
	entry.ID = ptr(f.nextID)
	f.added = append(f.added, entry)
	f.records[date] = f.records[date].Append(entry)
	return entry, nil
}

func (f *fakeAPI) Remove(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeAPI) calls(date domain.Date) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls[date]
}

var egg = dto.Candidate{Name: "Egg", Calories: 70, Protein: 6, ServingWeightGrams: 50}

func newViewModel(api *fakeAPI, today string) diaryin.Usecase {
	at, _ := time.Parse("2006-01-02", today)
	return usecase.NewViewModel(api, diaryout.NewMemoryCache(), clock.Fixed{At: at}, logging.Discard())
}

func seedDay(api *fakeAPI, date domain.Date, entries ...domain.FoodEntry) {
	api.records[date] = domain.NewDailyRecord(entries)
}

func TestAddEntryScalesAndRecomputesTotal(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01",
		domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120},
		domain.FoodEntry{ID: ptr(2), Name: "Jam", Calories: 80},
	)
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()

	state, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)
	require.Equal(t, 200.0, state.Consumed)
	vm.SetTarget(2000)

	state, err = vm.AddEntry(ctx, egg, "2")
	require.NoError(t, err)
	assert.Equal(t, 340.0, state.Consumed)
	assert.Equal(t, 1660.0, state.Remaining)
	require.Len(t, state.Entries, 3)
	last := state.Entries[2]
	assert.Equal(t, "Egg", last.Name)
	assert.Equal(t, 140.0, last.Calories)
	assert.Equal(t, 12.0, last.Protein)
	assert.Equal(t, 100.0, last.ServingWeightGrams)
	assert.True(t, last.HasID)
}

func TestAddEntryDefaultsToOneServing(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	state, err := vm.AddEntry(ctx, egg, "  ")
	require.NoError(t, err)
	assert.Equal(t, 70.0, state.Consumed)
}

func TestAddEntryRejectsBadServingsWithoutCallingBackend(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	_, err = vm.AddEntry(ctx, egg, "two")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, api.added)
}

func TestAddEntryFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 200})
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	before, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	api.addErr = errors.New("backend rejected")
	after, err := vm.AddEntry(ctx, egg, "1")
	require.Error(t, err)
	assert.Equal(t, before, after)
}

func TestAddEntryWhileLoadingIsRefused(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	vm := newViewModel(api, "2024-03-01")
	_, fetch, err := vm.Select("2024-03-01")
	require.NoError(t, err)
	require.True(t, fetch)

	_, err = vm.AddEntry(context.Background(), egg, "1")
	require.ErrorIs(t, err, apperrors.ErrDayLoading)
	assert.Empty(t, api.added)
}

func TestRemoveEntryWithoutIDIsRefused(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01",
		domain.FoodEntry{Name: "Mystery", Calories: 90},
		domain.FoodEntry{ID: ptr(2), Name: "Apple", Calories: 50},
	)
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	before, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	after, err := vm.RemoveEntry(ctx, 0)
	require.ErrorIs(t, err, apperrors.ErrEntryWithoutID)
	assert.Equal(t, before, after)
	assert.Empty(t, api.removed)
}

func TestRemoveEntryRecomputesAndUpdatesCache(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01",
		domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120},
		domain.FoodEntry{ID: ptr(2), Name: "Jam", Calories: 80},
	)
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	state, err := vm.RemoveEntry(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, api.removed)
	assert.Equal(t, 80.0, state.Consumed)
	require.Len(t, state.Entries, 1)
	assert.Equal(t, "Jam", state.Entries[0].Name)

	_, err = vm.NextDay(ctx)
	require.NoError(t, err)
	state, err = vm.PreviousDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80.0, state.Consumed, "cached record must reflect the removal")
	assert.Equal(t, 1, api.calls("2024-03-01"))
}

func TestRemoveEntryFailureAndBadIndex(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120})
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	before, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	_, err = vm.RemoveEntry(ctx, 5)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	api.removeErr = errors.New("boom")
	after, err := vm.RemoveEntry(ctx, 0)
	require.Error(t, err)
	assert.Equal(t, before, after)
}

func TestSelectDateIsIdempotent(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120})
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()

	first, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)
	second, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.calls("2024-03-01"))
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Slow", Calories: 500})
	seedDay(api, "2024-03-02", domain.FoodEntry{ID: ptr(2), Name: "Fast", Calories: 50})
	gate := make(chan struct{})
	api.gates["2024-03-01"] = gate
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()

	_, fetch, err := vm.Select("2024-03-01")
	require.NoError(t, err)
	require.True(t, fetch)
	done := make(chan error, 1)
	go func() {
		_, err := vm.Fetch(ctx, "2024-03-01")
		done <- err
	}()

	state, err := vm.SelectDate(ctx, "2024-03-02")
	require.NoError(t, err)
	require.Equal(t, 50.0, state.Consumed)

	close(gate)
	require.ErrorIs(t, <-done, apperrors.ErrSuperseded)

	state = vm.Snapshot()
	assert.Equal(t, "2024-03-02", state.Date)
	assert.Equal(t, 50.0, state.Consumed)
	require.Len(t, state.Entries, 1)
	assert.Equal(t, "Fast", state.Entries[0].Name)

	state, fetch, err = vm.Select("2024-03-01")
	require.NoError(t, err)
	assert.False(t, fetch, "stale response still fills the cache")
	assert.Equal(t, 500.0, state.Consumed)
}

func TestPreviousDayCrossesLeapDay(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	state, err := vm.PreviousDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", state.Date)
	assert.Equal(t, 1, api.calls("2024-02-29"))
}

func TestFailedFetchDegradesToEmptyAndRetriesOnRevisit(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.getErr["2024-03-01"] = apperrors.ErrTimeout
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	vm.SetTarget(1800)

	state, err := vm.SelectDate(ctx, "2024-03-01")
	require.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.False(t, state.Loading)
	assert.True(t, state.Degraded)
	assert.Empty(t, state.Entries)
	assert.Equal(t, 1800.0, state.Remaining)

	delete(api.getErr, "2024-03-01")
	_, err = vm.NextDay(ctx)
	require.NoError(t, err)
	state, err = vm.PreviousDay(ctx)
	require.NoError(t, err)
	assert.False(t, state.Degraded)
	assert.Equal(t, 2, api.calls("2024-03-01"))
}

func TestRefreshReloadsSelectedDay(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120})
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	seedDay(api, "2024-03-01",
		domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120},
		domain.FoodEntry{ID: ptr(9), Name: "Added elsewhere", Calories: 300},
	)
	state, err := vm.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 420.0, state.Consumed)
	assert.Equal(t, 2, api.calls("2024-03-01"))
}

func TestOverBudgetIsNegativeRemaining(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Feast", Calories: 2500})
	vm := newViewModel(api, "2024-03-01")
	_, err := vm.SelectDate(context.Background(), "2024-03-01")
	require.NoError(t, err)

	state := vm.SetTarget(2000)
	assert.Equal(t, -500.0, state.Remaining)
}

func TestSelectRejectsMalformedDate(t *testing.T) {
	t.Parallel()
	vm := newViewModel(newFakeAPI(), "2024-03-01")
	_, _, err := vm.Select("03/01/2024")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, "2024-03-01", vm.Snapshot().Date)
}

func (f *fakeAPI) setGate(date domain.Date, gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gates[date] = gate
}

func TestRefreshOvertakesSlowerFirstFetch(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120})
	gate := make(chan struct{})
	api.setGate("2024-03-01", gate)
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()

	_, fetch, err := vm.Select("2024-03-01")
	require.NoError(t, err)
	require.True(t, fetch)
	done := make(chan error, 1)
	go func() {
		_, err := vm.Fetch(ctx, "2024-03-01")
		done <- err
	}()
	require.Eventually(t, func() bool { return api.calls("2024-03-01") == 1 }, time.Second, time.Millisecond)

	api.setGate("2024-03-01", nil)
	api.mu.Lock()
	api.records["2024-03-01"] = domain.NewDailyRecord([]domain.FoodEntry{
		{ID: ptr(1), Name: "Toast", Calories: 120},
		{ID: ptr(2), Name: "Soup", Calories: 200},
	})
	api.mu.Unlock()
	state, err := vm.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 320.0, state.Consumed)

	close(gate)
	require.ErrorIs(t, <-done, apperrors.ErrSuperseded)
	state = vm.Snapshot()
	assert.False(t, state.Loading)
	assert.Equal(t, 320.0, state.Consumed, "the overtaken response replaced the refreshed record")

	_, err = vm.NextDay(ctx)
	require.NoError(t, err)
	state, err = vm.PreviousDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 320.0, state.Consumed, "the overtaken response reached the cache")
}

func TestResetForgetsCachedDays(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120})
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	vm.SetTarget(2000)
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)

	state := vm.Reset()
	assert.Equal(t, "2024-03-01", state.Date)
	assert.Empty(t, state.Entries)
	assert.Zero(t, state.Consumed)
	assert.Zero(t, state.Target)
	assert.False(t, state.Loading)

	_, fetch, err := vm.Select("2024-03-01")
	require.NoError(t, err)
	assert.True(t, fetch, "the day must be fetched again after a reset")

	_, err = vm.RemoveEntryByID(ctx, "2024-03-01", 1)
	require.ErrorIs(t, err, apperrors.ErrDayLoading)
}

func TestResetDropsWorkInFlight(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01", domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120})
	gate := make(chan struct{})
	api.setGate("2024-03-01", gate)
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()

	_, fetch, err := vm.Select("2024-03-01")
	require.NoError(t, err)
	require.True(t, fetch)
	done := make(chan error, 1)
	go func() {
		_, err := vm.Fetch(ctx, "2024-03-01")
		done <- err
	}()
	require.Eventually(t, func() bool { return api.calls("2024-03-01") == 1 }, time.Second, time.Millisecond)

	vm.Reset()
	close(gate)
	require.ErrorIs(t, <-done, apperrors.ErrSuperseded)
	assert.Empty(t, vm.Snapshot().Entries)

	_, fetch, err = vm.Select("2024-03-01")
	require.NoError(t, err)
	assert.True(t, fetch, "a response fetched before the reset reached the cache")
}

func TestAddEntryOnKeepsItsDate(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)
	_, err = vm.NextDay(ctx)
	require.NoError(t, err)

	state, err := vm.AddEntryOn(ctx, "2024-03-01", egg, "1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", state.Date)
	assert.Empty(t, state.Entries)
	require.Len(t, api.added, 1)

	state, err = vm.PreviousDay(ctx)
	require.NoError(t, err)
	require.Len(t, state.Entries, 1)
	assert.Equal(t, 70.0, state.Consumed)
}

func TestRemoveEntryByID(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	seedDay(api, "2024-03-01",
		domain.FoodEntry{ID: ptr(1), Name: "Toast", Calories: 120},
		domain.FoodEntry{ID: ptr(2), Name: "Soup", Calories: 200},
	)
	vm := newViewModel(api, "2024-03-01")
	ctx := context.Background()
	_, err := vm.SelectDate(ctx, "2024-03-01")
	require.NoError(t, err)
	_, err = vm.NextDay(ctx)
	require.NoError(t, err)

	_, err = vm.RemoveEntryByID(ctx, "2024-03-01", 42)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, api.removed)

	state, err := vm.RemoveEntryByID(ctx, "2024-03-01", 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", state.Date, "removal must not move the selection")
	assert.Equal(t, []int64{2}, api.removed)

	state, err = vm.PreviousDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, state.Consumed)
}
