package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	accountinadapter "caltrack/internal/modules/account/adapter/in"
	accountoutadapter "caltrack/internal/modules/account/adapter/out"
	accountservice "caltrack/internal/modules/account/service"
	accountusecase "caltrack/internal/modules/account/usecase"
	diaryinadapter "caltrack/internal/modules/diary/adapter/in"
	diaryoutadapter "caltrack/internal/modules/diary/adapter/out"
	diarydto "caltrack/internal/modules/diary/dto"
	diaryin "caltrack/internal/modules/diary/port/in"
	diaryusecase "caltrack/internal/modules/diary/usecase"
	foodinadapter "caltrack/internal/modules/food/adapter/in"
	foodoutadapter "caltrack/internal/modules/food/adapter/out"
	foodusecase "caltrack/internal/modules/food/usecase"
	profileinadapter "caltrack/internal/modules/profile/adapter/in"
	profileoutadapter "caltrack/internal/modules/profile/adapter/out"
	profileusecase "caltrack/internal/modules/profile/usecase"
	"caltrack/internal/platform/clock"
	"caltrack/internal/platform/config"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/httpapi"
	"caltrack/internal/platform/id"
	"caltrack/internal/platform/kvstore"
	"caltrack/internal/platform/logging"
	uiapp "caltrack/internal/ui/app"
)

type App struct {
	AccountCLI accountinadapter.CLIHandler
	ProfileCLI profileinadapter.CLIHandler
	DiaryCLI   diaryinadapter.CLIHandler
	FoodCLI    foodinadapter.CLIHandler

	diary     diaryin.Usecase
	typeahead *foodusecase.Typeahead
	logger    *slog.Logger
	kv        *kvstore.Store
}

type options struct {
	clock      clock.Clock
	httpClient *http.Client
}

type Option func(*options)

func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{clock: clock.SystemClock{}, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	kv, err := kvstore.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open client store: %w", err)
	}
	sessionSvc := accountservice.NewSessionService(o.clock, accountoutadapter.NewKVCredentialStore(kv), logger)

	apiClient := &httpapi.Client{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: o.httpClient,
		Timeout:    cfg.RequestTimeout,
		Tokens:     sessionSvc,
		IDs:        id.UUID{},
		Logger:     logging.Component(logger, "api"),
	}
	nutritionClient := &httpapi.Client{
		BaseURL:    cfg.NutritionBaseURL,
		HTTPClient: o.httpClient,
		Timeout:    cfg.RequestTimeout,
		IDs:        id.UUID{},
		Logger:     logging.Component(logger, "nutrition"),
	}

	diaryUC := diaryusecase.NewViewModel(
		diaryoutadapter.NewHTTPRecordAPI(apiClient),
		diaryoutadapter.NewMemoryCache(),
		o.clock,
		logger,
	)
	accountUC := accountusecase.NewInteractor(
		sessionSvc,
		accountoutadapter.NewHTTPAccountAPI(apiClient),
		logger,
		accountoutadapter.NewDiaryReset(diaryUC),
	)
	profileUC := profileusecase.NewInteractor(
		profileoutadapter.NewHTTPProfileAPI(apiClient),
		profileoutadapter.NewAccountOnboarding(accountUC),
		logger,
	)
	foodUC := foodusecase.NewInteractor(foodoutadapter.NewHTTPNutritionIndex(nutritionClient), logger)

	return &App{
		AccountCLI: accountinadapter.NewCLIHandler(accountUC),
		ProfileCLI: profileinadapter.NewCLIHandler(profileUC),
		DiaryCLI:   diaryinadapter.NewCLIHandler(diaryUC),
		FoodCLI:    foodinadapter.NewCLIHandler(foodUC),
		diary:      diaryUC,
		typeahead:  foodusecase.NewTypeahead(foodUC, cfg.SearchDebounce, logger),
		logger:     logger,
		kv:         kv,
	}, nil
}

func (a *App) Close() error {
	return a.kv.Close()
}

// LoadDay fetches the calorie target and the record of date concurrently.
// A profile that cannot be fetched yields a zero target; a record that
// cannot be fetched yields an empty, degraded day and the fetch error.
func (a *App) LoadDay(ctx context.Context, date string) (diarydto.DayState, error) {
	var (
		target   float64
		fetchErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		target = a.ProfileCLI.Target(gctx)
		return nil
	})
	g.Go(func() error {
		_, fetchErr = a.diary.SelectDate(gctx, date)
		if errors.Is(fetchErr, apperrors.ErrInvalidInput) {
			return fetchErr
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return a.diary.Snapshot(), err
	}
	return a.diary.SetTarget(target), fetchErr
}

func RunTUI(ctx context.Context, app *App) error {
	model := uiapp.NewModel(ctx, uiapp.Deps{
		Account:   app.AccountCLI,
		Profile:   app.ProfileCLI,
		Diary:     app.diary,
		Food:      app.FoodCLI,
		Typeahead: app.typeahead,
		Logger:    logging.Component(app.logger, "ui"),
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
