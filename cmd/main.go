package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/api"
	"github.com/tcp_snm/arena/internal/config"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/database/schema"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/contest_service"
	"github.com/tcp_snm/arena/internal/service/problem_service"
	"github.com/tcp_snm/arena/internal/service/reconcile_service"
	"github.com/tcp_snm/arena/internal/service/submission_service"
	"github.com/tcp_snm/arena/internal/service/user_service"
	"github.com/tcp_snm/arena/middleware"
)

const shutdownTimeout = 10 * time.Second

func initDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, *database.Queries) {
	// create a conneciton to the database
	pool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		panic(err)
	}
	if err = pool.Ping(ctx); err != nil {
		panic(err)
	}

	if cfg.MigrateOnStart {
		if err = database.Migrate(ctx, pool, schema.FS); err != nil {
			panic(err)
		}
	} else {
		log.Info("MIGRATE_ON_START disabled, expecting the schema to be in place")
	}

	// get the query tool with this connection
	return pool, database.New(pool)
}

func initRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, reconcile triggers stay in process")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		panic(err)
	}
	log.Infof("connected to redis at %s", cfg.RedisAddr)
	return client
}

func initUserService(db database.Querier, cfg config.Config) *user_service.UserService {
	log.Info("initializing user service")
	us := user_service.UserService{
		DB:        db,
		CacheSize: cfg.RoleCacheSize,
	}
	if err := us.Start(); err != nil {
		panic(err)
	}
	return &us
}

func initProblemService(db database.Querier, us *user_service.UserService) *problem_service.ProblemService {
	log.Info("initializing problem service")
	return &problem_service.ProblemService{
		DB:                db,
		UserServiceConfig: us,
	}
}

func initContestService(
	db database.Querier,
	us *user_service.UserService,
	ps *problem_service.ProblemService,
) *contest_service.ContestService {
	log.Info("initializing contest service")
	cs := contest_service.ContestService{
		DB:                   db,
		UserServiceConfig:    us,
		ProblemServiceConfig: ps,
	}
	cs.Start()
	return &cs
}

func initSubmissionService(
	db database.Querier,
	us *user_service.UserService,
	cs *contest_service.ContestService,
) *submission_service.SubmissionService {
	log.Info("initializing submission service")
	ss := submission_service.SubmissionService{
		Records:        submission_service.NewDBRecordService(db),
		UserService:    us,
		ContestService: cs,
	}
	ss.Start()
	return &ss
}

func initReconcileService(
	ctx context.Context,
	db database.Querier,
	us *user_service.UserService,
	rdb *redis.Client,
	cfg config.Config,
) *reconcile_service.ReconcileService {
	log.Info("initializing reconcile service")
	rs := reconcile_service.ReconcileService{
		DB:          db,
		UserService: us,
		Interval:    cfg.ReconcileInterval,
	}
	if rdb != nil {
		rs.Queue = reconcile_service.NewRedisTriggerQueue(rdb, cfg.ReconcileQueue)
	}
	rs.Start(ctx)
	return &rs
}

func initApi(ctx context.Context, db database.Querier, rdb *redis.Client, cfg config.Config) *api.Api {
	log.Info("initializing api config")
	us := initUserService(db, cfg)
	ps := initProblemService(db, us)
	cs := initContestService(db, us, ps)
	ss := initSubmissionService(db, us, cs)
	rs := initReconcileService(ctx, db, us, rdb, cfg)
	return &api.Api{
		ContestServiceConfig:    cs,
		ProblemServiceConfig:    ps,
		SubmissionServiceConfig: ss,
		ReconcileServiceConfig:  rs,
	}
}

func setCors(router *chi.Mux) {
	router.Use(
		cors.Handler(
			cors.Options{
				AllowedOrigins:   []string{"https://*", "http://*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
				ExposedHeaders:   []string{"Link"},
				MaxAge:           300,
			},
		),
	)
	log.Info("cors options has been set")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err = cfg.ConfigureLogger(); err != nil {
		log.Fatal(err)
	}
	service.InitializeServices()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, db := initDatabase(ctx, cfg)
	defer pool.Close()
	rdb := initRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	apiConfig := initApi(ctx, db, rdb, cfg)

	// initialize a new router
	router := chi.NewRouter()
	setCors(router)

	// mount v1 router
	router.Mount("/v1", NewV1Router(apiConfig, middleware.JWTAuth{Secret: []byte(cfg.JWTSecret)}))
	log.Info("v1 router has been mounted")

	// create a server object to listen to all requests
	srv := http.Server{
		Handler: router,
		Addr:    cfg.Address(),
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown failed, %v", err)
		}
	}()

	log.Infof("starting server on %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server cannot be started. Error: %v", err)
	}

	apiConfig.ReconcileServiceConfig.Wait()
	log.Info("server stopped")
}
