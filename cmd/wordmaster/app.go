package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"wordmaster/internal/application/usecases"
	"wordmaster/internal/config"
	"wordmaster/internal/domain/book"
	"wordmaster/internal/domain/settings"
	"wordmaster/internal/domain/vocabulary"
	"wordmaster/internal/infrastructure/filesystem"
	"wordmaster/internal/infrastructure/locking"
	"wordmaster/internal/infrastructure/persistence"
)

// app holds the dependencies shared by every command
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	clock clockwork.Clock
	db    *sql.DB

	closers []func() error

	bookRepo book.Repository
	wordRepo vocabulary.Repository

	scheduling *usecases.SchedulingUseCase
	books      *usecases.BookUseCase
	study      *usecases.StudyUseCase
	settings   *usecases.SettingsUseCase
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := persistence.NewSQLiteDB(cfg.Database.Path, cfg.Database.BusyTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		clock:   clockwork.NewRealClock(),
		db:      db,
		closers: []func() error{db.Close},
	}

	locker, err := a.newLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	location := cfg.Study.Location()

	a.bookRepo = persistence.NewBookRepository(db)
	a.wordRepo = persistence.NewVocabularyRepository(db)
	records := persistence.NewStudyRecordRepository(db)

	a.scheduling = usecases.NewSchedulingUseCase(persistence.NewScheduleRepository(db), locker, a.clock, location, log)
	a.books = usecases.NewBookUseCase(a.bookRepo, a.wordRepo, a.scheduling, log)
	a.study = usecases.NewStudyUseCase(a.scheduling, a.wordRepo, records, a.clock, location, log)
	a.settings = usecases.NewSettingsUseCase(persistence.NewPreferencesRepository(db), settings.Defaults{
		NewWordsPerSession:    cfg.Study.NewWordsPerSession,
		ReviewWordsPerSession: cfg.Study.ReviewWordsPerSession,
		RemindersEnabled:      cfg.Reminder.Enabled,
	})

	return a, nil
}

// newLocker picks the Redis lock when an address is configured, else the in-process one
func (a *app) newLocker(ctx context.Context) (usecases.Locker, error) {
	if !a.cfg.Redis.Enabled() {
		a.log.Debug("using in-process review lock")
		return locking.NewKeyedMutex(), nil
	}

	redisCfg := locking.DefaultRedisConfig()
	redisCfg.Addr = a.cfg.Redis.Addr
	redisCfg.Password = a.cfg.Redis.Password
	redisCfg.DB = a.cfg.Redis.DB
	redisCfg.TTL = a.cfg.Redis.LockTTL

	locker, err := locking.NewRedisLocker(ctx, redisCfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis lock: %w", err)
	}
	a.closers = append(a.closers, locker.Close)

	a.log.Info("using redis review lock", zap.String("addr", redisCfg.Addr))
	return locker, nil
}

// importFile loads every book of a JSON file into the catalog
func (a *app) importFile(ctx context.Context, path string) ([]*book.Book, error) {
	loaded, err := filesystem.NewBookLoader().LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	books := make([]*book.Book, 0, len(loaded))
	for _, l := range loaded {
		if err := a.books.ImportBook(ctx, l.Book, l.Words); err != nil {
			return nil, fmt.Errorf("book %s: %w", l.Book.ID(), err)
		}
		books = append(books, l.Book)
	}
	return books, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to close resource", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
