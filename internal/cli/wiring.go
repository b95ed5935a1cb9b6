package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/config"
	"exam-prep-service/internal/infra/memory"
	mongostore "exam-prep-service/internal/infra/mongo"
	"exam-prep-service/internal/infra/postgres"
	redisinfra "exam-prep-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

const questionPoolTTL = 10 * time.Minute

// loadConfig reads the YAML file, falling back to defaults when it is absent.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		config.InitLogger(cfg.Log.Level, cfg.Log.Format)
		config.Logger().WithField("path", path).Warn("config file not found, using defaults")
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	config.InitLogger(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

type stores struct {
	contests      app.ContestStore
	results       app.ContestResultStore
	quizResults   app.QuizResultStore
	notifications app.NotificationStore
	users         app.UserDirectory
	pool          app.QuestionPool
}

type services struct {
	contests      *app.ContestService
	results       *app.ResultService
	notifications *app.NotificationService
}

// buildServices opens the configured storage driver, layers the optional
// Redis cache and lock on top and wires the application services. The
// returned func releases every connection.
func buildServices(ctx context.Context, cfg config.Config) (*services, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("contest timezone: %w", err)
	}

	st, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){closeStores}
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	contestOpts := []app.ContestOption{app.WithLocation(loc)}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			release()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })

		st.results = redisinfra.NewLeaderboardRepository(client, st.results, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		contestOpts = append(contestOpts, app.WithCreationLock(
			redisinfra.NewContestLock(client, config.TTLDuration(cfg.Redis.LockTTL, 10*time.Second)),
		))
	}

	notifications := app.NewNotificationService(st.notifications, st.users)
	contestOpts = append(contestOpts, app.WithContestNotifier(notifications))

	return &services{
		contests: app.NewContestService(st.contests, st.results, st.pool, contestOpts...),
		results: app.NewResultService(st.quizResults,
			app.WithResultLocation(loc),
			app.WithQuizNotifier(notifications),
		),
		notifications: notifications,
	}, release, nil
}

func openStores(ctx context.Context, cfg config.Config) (*stores, func(), error) {
	log := config.Logger().WithField("driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		db := postgres.Open(cfg.Postgres.URL)
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("connect question pool: %w", err)
		}
		log.Info("using postgres storage")
		return &stores{
			contests:      postgres.NewContestStore(db),
			results:       postgres.NewContestResultStore(db),
			quizResults:   postgres.NewQuizResultStore(db),
			notifications: postgres.NewNotificationStore(db),
			users:         postgres.NewUserDirectory(db),
			pool:          memory.NewCachedQuestionPool(postgres.NewQuestionPool(pool), questionPoolTTL),
		}, func() { pool.Close(); _ = db.Close() }, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		log.WithField("database", cfg.Mongo.Database).Info("using mongo storage")
		return &stores{
			contests:      mongostore.NewContestStore(db),
			results:       mongostore.NewContestResultStore(db),
			quizResults:   mongostore.NewQuizResultStore(db),
			notifications: mongostore.NewNotificationStore(db),
			users:         mongostore.NewUserDirectory(db),
			pool:          memory.NewCachedQuestionPool(mongostore.NewQuestionPool(db), questionPoolTTL),
		}, func() { _ = client.Disconnect(context.Background()) }, nil

	default:
		log.Info("using in-memory storage")
		return &stores{
			contests:      memory.NewContestStore(),
			results:       memory.NewContestResultStore(),
			quizResults:   memory.NewQuizResultStore(),
			notifications: memory.NewNotificationStore(),
			users:         memory.NewUserDirectory(),
			pool:          memory.NewStaticQuestionPool(nil),
		}, func() {}, nil
	}
}
