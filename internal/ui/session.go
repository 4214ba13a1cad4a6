package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/lvlup/internal/coach"
	"github.com/javiermolinar/lvlup/internal/db"
	"github.com/javiermolinar/lvlup/internal/events"
	"github.com/javiermolinar/lvlup/internal/keyring"
	"github.com/javiermolinar/lvlup/internal/notify"
	"github.com/javiermolinar/lvlup/internal/planner"
)

// session is one open day with its storage, event bus and coach.
type session struct {
	store   *db.Store
	bus     *events.Bus
	planner *planner.Planner
}

// openStore opens the configured database and seeds the planning window.
func (a *App) openStore(ctx context.Context) (*db.Store, error) {
	driver, dsn, err := a.config.StorageDSN()
	if err != nil {
		return nil, err
	}
	store, err := db.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", driver, err)
	}
	if err := store.SeedWindow(ctx, a.config.Window()); err != nil {
		_ = store.Close()
		return nil, err
	}
	a.logger.Debug("storage opened", "driver", driver)
	return store, nil
}

// openSession opens date and routes planner events to the coach, which
// delivers to outboxes plus Telegram when configured.
func (a *App) openSession(ctx context.Context, date time.Time, outboxes ...coach.Outbox) (*session, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus(a.logger, events.DefaultQueueSize)
	bus.Subscribe(a.newCoach(outboxes))

	p, err := planner.Open(ctx, planner.Deps{
		Repo:      store,
		Publisher: bus,
		Logger:    a.logger,
		NudgeMin:  a.config.Planner.NudgeMinutes,
		Now:       a.now,
	}, date)
	if err != nil {
		bus.Close()
		_ = store.Close()
		return nil, err
	}
	return &session{store: store, bus: bus, planner: p}, nil
}

// Close lands queued writes, lets the coach answer pending events and
// closes the store, in that order. It reports writes that never landed.
func (s *session) Close() error {
	s.planner.Close()
	s.bus.Close()
	closeErr := s.store.Close()
	if n := s.planner.Failures(); n > 0 {
		return errors.Join(fmt.Errorf("%d change(s) could not be saved, see the log", n), closeErr)
	}
	return closeErr
}

func (a *App) newCoach(outboxes []coach.Outbox) *coach.Coach {
	cfg := a.config.Coach
	client, err := coach.NewClient(cfg.Provider, cfg.Model, cfg.BaseURL, a.config.Secret(keyring.CoachAPIKey))
	if err != nil {
		a.logger.Warn("coach model unavailable, using canned lines", "provider", cfg.Provider, "err", err)
		client = nil
	}

	if chatID := a.config.Telegram.ChatID; chatID != 0 {
		tg, err := notify.NewTelegram(a.config.Secret(keyring.TelegramToken), chatID, a.logger)
		if err != nil {
			a.logger.Warn("telegram disabled", "err", err)
		} else {
			outboxes = append(outboxes, tg)
		}
	}
	outboxes = append(outboxes, coach.LogOutbox{Logger: a.logger})

	return coach.New(client, outboxes, coach.WithLanguage(cfg.Language), coach.WithLogger(a.logger))
}

func (a *App) newWatcher(s *session, rollover bool) (*planner.Watcher, error) {
	return planner.NewWatcher(s.planner, planner.WatcherConfig{
		Interval:  a.config.PromptInterval(),
		Countdown: a.config.PromptCountdown(),
		Rollover:  rollover,
		Logger:    a.logger,
		Now:       a.now,
	})
}
