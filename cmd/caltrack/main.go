package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"caltrack/internal/bootstrap"
	accountdto "caltrack/internal/modules/account/dto"
	diarydto "caltrack/internal/modules/diary/dto"
	fooddto "caltrack/internal/modules/food/dto"
	navigation "caltrack/internal/modules/navigation/domain"
	profiledto "caltrack/internal/modules/profile/dto"
	"caltrack/internal/platform/config"
	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/fakeapi"
	"caltrack/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	stateDir   string
	configPath string
	apiURL     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:           "caltrack",
		Short:         "Calorie tracker client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.stateDir, "state-dir", "", "directory holding the local database, config and log (default: user config dir)")
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default: <state-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&f.apiURL, "api-url", "", "backend API base URL")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(newTUICmd(f))
	root.AddCommand(newLoginCmd(f))
	root.AddCommand(newLogoutCmd(f))
	root.AddCommand(newRegisterCmd(f))
	root.AddCommand(newStatusCmd(f))
	root.AddCommand(newProfileCmd(f))
	root.AddCommand(newDiaryCmd(f))
	root.AddCommand(newFoodCmd(f))
	root.AddCommand(newSettingsCmd(f))
	root.AddCommand(newConfigCmd(f))
	root.AddCommand(newDevServerCmd(f))
	return root
}

func loadConfig(f *rootFlags) (config.Config, error) {
	return config.Load(config.Overrides{
		StateDir:   f.stateDir,
		ConfigPath: f.configPath,
		APIBaseURL: f.apiURL,
		LogLevel:   f.logLevel,
	}, nil)
}

// withApp builds the application for one command and tears it down after.
func withApp(cmd *cobra.Command, f *rootFlags, run func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return run(cmd.Context(), app)
}

func newTUICmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the caltrack terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, bootstrap.RunTUI)
		},
	}
}

func newLoginCmd(f *rootFlags) *cobra.Command {
	var email, password string
	login := &cobra.Command{
		Use:   "login --email <email> --password <password>",
		Short: "Log in and keep the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				session, err := app.AccountCLI.Login(ctx, email, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", session.Subject)
				if !session.ProfileComplete {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "profile incomplete: run `caltrack profile submit` to set your calorie target")
				}
				return nil
			})
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&password, "password", "", "account password")
	return login
}

func newLogoutCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				if _, err := app.AccountCLI.Logout(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}
}

func newRegisterCmd(f *rootFlags) *cobra.Command {
	var in accountdto.RegisterInput
	register := &cobra.Command{
		Use:   "register --first <name> --last <name> --email <email> --password <password>",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.AccountCLI.Register(ctx, in); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "account created for %s, log in with `caltrack login`\n", strings.TrimSpace(in.Email))
				return nil
			})
		},
	}
	register.Flags().StringVar(&in.FirstName, "first", "", "first name")
	register.Flags().StringVar(&in.MiddleName, "middle", "", "middle name (optional)")
	register.Flags().StringVar(&in.LastName, "last", "", "last name")
	register.Flags().StringVar(&in.Email, "email", "", "email")
	register.Flags().StringVar(&in.PhoneNumber, "phone", "", "phone number (optional)")
	register.Flags().StringVar(&in.Password, "password", "", "password")
	return register
}

func newStatusCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and where it leads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				session, err := app.AccountCLI.Initialize(ctx)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), session)
				return nil
			})
		},
	}
}

func printSession(w io.Writer, s accountdto.SessionOutput) {
	access := navigation.Access{Authenticated: s.Authenticated, ProfileComplete: s.ProfileComplete}
	if !s.Authenticated {
		_, _ = fmt.Fprintln(w, "not logged in")
	} else {
		_, _ = fmt.Fprintf(w, "logged in: %s\n", s.Subject)
		if !s.ExpiresAt.IsZero() {
			_, _ = fmt.Fprintf(w, "expires: %s\n", s.ExpiresAt.Local().Format(time.RFC3339))
		}
		_, _ = fmt.Fprintf(w, "profile complete: %t\n", s.ProfileComplete)
	}
	menu := navigation.Menu(access)
	titles := make([]string, len(menu))
	for i, v := range menu {
		titles[i] = string(v)
	}
	_, _ = fmt.Fprintf(w, "landing: %s\nmenu: %s\n", navigation.Landing(access), strings.Join(titles, ", "))
}

func newProfileCmd(f *rootFlags) *cobra.Command {
	profile := &cobra.Command{Use: "profile", Short: "Profile and calorie targets"}

	profile.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored profile and calorie targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				p, err := app.ProfileCLI.Get(ctx)
				if errors.Is(err, apperrors.ErrNotFound) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no profile yet: run `caltrack profile submit`")
					return nil
				}
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), p)
				return nil
			})
		},
	})

	var in profiledto.QuestionnaireInput
	submit := &cobra.Command{
		Use:   "submit --goal <gain|lose|maintain> --gender <male|female> --height-feet <n> --height-inches <n> --weight <lbs> --activity <level>",
		Short: "Answer the questionnaire and derive calorie targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ProfileCLI.Submit(ctx, in)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), out.Profile)
				return nil
			})
		},
	}
	submit.Flags().StringVar(&in.Goal, "goal", "", "gain|lose|maintain")
	submit.Flags().StringVar(&in.Gender, "gender", "", "male|female")
	submit.Flags().StringVar(&in.HeightFeet, "height-feet", "", "height, feet part (0-8)")
	submit.Flags().StringVar(&in.HeightInches, "height-inches", "0", "height, inches part (0-11)")
	submit.Flags().StringVar(&in.WeightLbs, "weight", "", "weight in lbs")
	submit.Flags().StringVar(&in.ActivityLevel, "activity", "", "sedentary|lightly|moderately|very|extra")
	profile.AddCommand(submit)
	return profile
}

func printProfile(w io.Writer, p profiledto.ProfileOutput) {
	_, _ = fmt.Fprintf(w, "goal: %s\ngender: %s\nheight: %d ft %d in\nweight: %g lbs\nactivity: %s\n",
		p.Goal, p.Gender, p.HeightFeet, p.HeightInches, p.WeightLbs, p.ActivityLevel)
	_, _ = fmt.Fprintf(w, "maintenance: %.0f kcal\ngain: %.0f kcal\nloss: %.0f kcal\ntarget: %.0f kcal\n",
		p.MaintenanceCalories, p.GainCalories, p.LossCalories, p.Target)
}

func today() string {
	return time.Now().Format(time.DateOnly)
}

func newDiaryCmd(f *rootFlags) *cobra.Command {
	diary := &cobra.Command{Use: "diary", Short: "Daily food diary"}
	var date string
	diary.PersistentFlags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default: today)")
	day := func() string {
		if strings.TrimSpace(date) == "" {
			return today()
		}
		return date
	}

	diary.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the entries and calorie balance of a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				state, err := app.LoadDay(ctx, day())
				if err := degraded(cmd, err); err != nil {
					return err
				}
				printDay(cmd.OutOrStdout(), state)
				return nil
			})
		},
	})

	diary.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Reload a day from the backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				target := app.ProfileCLI.Target(ctx)
				state, err := app.DiaryCLI.Refresh(ctx, day(), target)
				if err := degraded(cmd, err); err != nil {
					return err
				}
				printDay(cmd.OutOrStdout(), state)
				return nil
			})
		},
	})

	var pick int
	var nixItemID, servings string
	add := &cobra.Command{
		Use:   "add [food] [--pick n] [--branded <nix-item-id>] [--servings n]",
		Short: "Look up a food and log it",
		Long: "Look up a food and log it.\n\n" +
			"--servings defaults to 1 only when left out or empty. Any other value must be\n" +
			"a number greater than zero and is rejected otherwise.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			if strings.TrimSpace(query) == "" && strings.TrimSpace(nixItemID) == "" {
				return fmt.Errorf("a food query or --branded is required")
			}
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				var (
					n   fooddto.NutrientOutput
					err error
				)
				if strings.TrimSpace(nixItemID) != "" {
					n, err = app.FoodCLI.Resolve(ctx, query, nixItemID)
				} else {
					n, err = app.FoodCLI.Pick(ctx, query, pick)
				}
				if err != nil {
					return err
				}
				if _, err := app.LoadDay(ctx, day()); err != nil {
					if err := degraded(cmd, err); err != nil {
						return err
					}
				}
				state, err := app.DiaryCLI.Add(ctx, day(), diarydto.Candidate{
					Name:               n.Name,
					Calories:           n.Calories,
					Protein:            n.Protein,
					ServingWeightGrams: n.ServingWeightGrams,
				}, servings)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", n.Name)
				printDay(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}
	add.Flags().IntVar(&pick, "pick", 0, "index of the search result to log")
	add.Flags().StringVar(&nixItemID, "branded", "", "log a branded item by its nix item id")
	add.Flags().StringVar(&servings, "servings", "", "number of servings, must be > 0 (1 when empty)")
	diary.AddCommand(add)

	diary.AddCommand(&cobra.Command{
		Use:   "remove <index>",
		Short: "Remove the entry at index as listed by `diary show`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("%w: index must be a number, got %q", apperrors.ErrInvalidInput, args[0])
			}
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				if _, err := app.LoadDay(ctx, day()); err != nil {
					return err
				}
				state, err := app.DiaryCLI.Remove(ctx, day(), index)
				if err != nil {
					return err
				}
				printDay(cmd.OutOrStdout(), state)
				return nil
			})
		},
	})
	return diary
}

// degraded reports a failed day fetch on stderr and lets the command go
// on with the empty day. Authentication and input errors still fail.
func degraded(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrNotAuthenticated) || errors.Is(err, apperrors.ErrUnauthorized) {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; showing the day as empty\n", err)
	return nil
}

func printDay(w io.Writer, s diarydto.DayState) {
	_, _ = fmt.Fprintf(w, "%s  target %.0f  consumed %.0f  remaining %.0f kcal\n", s.Date, s.Target, s.Consumed, s.Remaining)
	if len(s.Entries) == 0 {
		_, _ = fmt.Fprintln(w, "no entries")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tfood\tkcal\tprotein g\tgrams\t")
	for i, e := range s.Entries {
		mark := ""
		if !e.HasID {
			mark = "unsynced"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.1f\t%.0f\t%s\n", i, e.Name, e.Calories, e.Protein, e.ServingWeightGrams, mark)
	}
	_ = tw.Flush()
}

func newFoodCmd(f *rootFlags) *cobra.Command {
	food := &cobra.Command{Use: "food", Short: "Nutrition index lookups"}

	food.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search common and branded foods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				results, err := app.FoodCLI.Search(ctx, args[0])
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no results")
					return nil
				}
				for i, r := range results {
					kind := "common"
					if r.NixItemID != "" {
						kind = "branded " + r.NixItemID
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t(%s)\n", i, r.Label, kind)
				}
				return nil
			})
		},
	})

	var nixItemID string
	resolve := &cobra.Command{
		Use:   "resolve <food name> | --branded <nix-item-id>",
		Short: "Show the nutrients of one serving",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				n, err := app.FoodCLI.Resolve(ctx, name, nixItemID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "name: %s\n", n.Name)
				if n.BrandName != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "brand: %s\n", n.BrandName)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "calories: %g kcal\nprotein: %g g\nserving: %g g\n", n.Calories, n.Protein, n.ServingWeightGrams)
				return nil
			})
		},
	}
	resolve.Flags().StringVar(&nixItemID, "branded", "", "nix item id of a branded food")
	food.AddCommand(resolve)
	return food
}

func newSettingsCmd(f *rootFlags) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Account details and settings"}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show account details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
				d, err := app.AccountCLI.Details(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "name: %s %s\nemail: %s\nphone: %s\n", d.FirstName, d.LastName, d.Email, d.PhoneNumber)
				return nil
			})
		},
	})

	update := func(use, short string, phone bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, f, func(ctx context.Context, app *bootstrap.App) error {
					var err error
					if phone {
						_, err = app.AccountCLI.UpdateSettings(ctx, args[0], "")
					} else {
						_, err = app.AccountCLI.UpdateSettings(ctx, "", args[0])
					}
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "updated")
					return nil
				})
			},
		}
	}
	settings.AddCommand(
		update("phone <number>", "Change the phone number", true),
		update("password <new password>", "Change the password", false),
	)
	return settings
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Client configuration"}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			raw, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# state dir: %s\n%s", cfg.StateDir, raw)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := strings.TrimSpace(f.configPath)
			// The target file does not exist yet, so it cannot be a source.
			cfg, err := loadConfig(&rootFlags{stateDir: f.stateDir, apiURL: f.apiURL, logLevel: f.logLevel})
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.FilePath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file %s already exists", path)
			}
			if err := cfg.SaveFile(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cfgCmd
}

func newDevServerCmd(f *rootFlags) *cobra.Command {
	var addr string
	var latency time.Duration
	dev := &cobra.Command{
		Use:   "devserver",
		Short: "Serve an in-memory backend for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := f.logLevel
			if level == "" {
				level = "info"
			}
			logger, _, err := logging.New(config.LogConfig{Level: level, Format: "text"})
			if err != nil {
				return err
			}
			backend := fakeapi.New(fakeapi.WithLogger(logger), fakeapi.WithLatency(latency))
			srv := &http.Server{
				Addr:              addr,
				Handler:           backend.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s/api\n", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	dev.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	dev.Flags().DurationVar(&latency, "latency", 0, "delay added to every response")
	return dev
}
