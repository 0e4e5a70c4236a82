package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/no-krul-tepes/esstu-bot/internal/cache"
	"github.com/no-krul-tepes/esstu-bot/internal/config"
	"github.com/no-krul-tepes/esstu-bot/internal/domain"
	"github.com/no-krul-tepes/esstu-bot/internal/schedule"
	"github.com/no-krul-tepes/esstu-bot/internal/scheduler"
	"github.com/no-krul-tepes/esstu-bot/internal/store"
	"github.com/no-krul-tepes/esstu-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    *store.SQLiteRepo
	router  *telegram.Router
	super   *scheduler.Supervisor
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	return &App{cfg: cfg, log: log, bot: bot}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting schedule bot",
		zap.String("tz", a.cfg.Timezone),
		zap.String("http", a.cfg.HTTPAddr),
	)

	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	semesterStart, err := a.cfg.SemesterStartDate(loc)
	if err != nil {
		return err
	}

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	calc := domain.NewWeekCalculator(semesterStart, loc)
	projector := schedule.NewProjector(repo, calc, loc)
	entityCache := cache.NewTTL(a.cfg.CacheTTL)

	a.router = telegram.NewRouter(a.bot, a.log, repo, projector, calc, entityCache)

	planner := scheduler.NewPlanner(repo, projector, a.log, loc, a.cfg.LessonLead)
	dispatcher := scheduler.NewDispatcher(repo, projector, a.router, entityCache, a.log, loc, a.cfg.DispatchBatchSize)
	a.super = scheduler.NewSupervisor(planner, dispatcher, repo, a.log, loc, scheduler.Intervals{
		Dispatch: a.cfg.DispatchInterval,
		Planning: a.cfg.PlanningInterval,
		Cleanup:  a.cfg.CleanupInterval,
	}, a.cfg.RetentionDays)

	if err := a.super.Start(); err != nil {
		a.log.Error("supervisor start failed", zap.Error(err))
		return err
	}

	a.httpSrv = a.newHTTPServer()
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) newHTTPServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.repo.DB().PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func (a *App) shutdown() {
	if a.super != nil {
		if err := a.super.Stop(); err != nil {
			a.log.Warn("supervisor stop error", zap.Error(err))
		}
	}

	// Create a short-lived shutdown context and cancel it immediately after use.
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.repo != nil {
		_ = a.repo.Close()
	}
}
