package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/cmd/internal"
	internaldomain "github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
	kafkabroker "github.com/sanLimbu/todo-app/internal/kafka"
	"github.com/sanLimbu/todo-app/internal/memcached"
	"github.com/sanLimbu/todo-app/internal/postgresql"
	"github.com/sanLimbu/todo-app/internal/rabbitmq"
	"github.com/sanLimbu/todo-app/internal/service"
	"github.com/sanLimbu/todo-app/internal/session"
	"github.com/sanLimbu/todo-app/internal/sqlite"
	"github.com/sanLimbu/todo-app/internal/web"
)

func main() {
	var env, address string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&address, "address", ":9234", "HTTP Server Address")
	flag.Parse()

	errC, err := run(env, address)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env, address string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "zap.NewProduction")
	}

	if env != "" {
		if err := envvar.Load(env); err != nil {
			return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
		}
	}

	settings, err := internal.NewSettings()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewSettings")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	ctx := context.Background()

	telemetry, err := internal.NewOTExporter(conf, settings.ServiceName)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	var closers []func()

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repos, err := newRepositories(ctx, conf, settings, logger)
	if err != nil {
		return nil, err
	}

	closers = append(closers, repos.close)

	msgBroker, closeBroker, err := newMessageBroker(conf, settings, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	closers = append(closers, closeBroker)

	rdb, err := internal.NewRedis(ctx, conf)
	if err != nil {
		cleanup()
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewRedis")
	}

	closers = append(closers, func() { _ = rdb.Close() })

	repos.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

	secret, err := conf.Get("SESSION_SECRET")
	if err != nil || secret == "" {
		cleanup()
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeInvalidArgument, "SESSION_SECRET is required")
	}

	tasks := service.NewTask(logger, repos.tasks, msgBroker)
	users := service.NewUser(logger, repos.users, repos.tasks, msgBroker)

	if err := bootstrapAdmin(ctx, conf, users, logger); err != nil {
		cleanup()
		return nil, err
	}

	logging := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info(r.Method,
				zap.Time("time", time.Now()),
				zap.String("url", r.URL.String()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)

			h.ServeHTTP(w, r)
		})
	}

	srv, err := newServer(serverConfig{
		Address:  address,
		Settings: settings.HTTP,
		Metrics:  telemetry.Metrics,
		Middlewares: []func(next http.Handler) http.Handler{
			middleware.RequestID,
			middleware.Recoverer,
			otelchi.Middleware(settings.ServiceName),
			logging,
		},
		Web: web.Config{
			Logger: logger,
			Sessions: session.NewManager(logger, session.NewRedis(rdb), session.Config{
				Secret: []byte(secret),
				TTL:    settings.SessionTTL,
				Secure: settings.SessionSecure,
			}),
			Tasks:  tasks,
			Users:  users,
			Checks: repos.checks,
		},
	})
	if err != nil {
		cleanup()
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "newServer")
	}

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(ctx,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()

		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), settings.HTTP.ShutdownTimeout)

		defer func() {
			_ = telemetry.Shutdown(ctxTimeout)
			_ = logger.Sync()
			cleanup()
			stop()
			cancel()
			close(errC)
		}()

		srv.SetKeepAlivesEnabled(false)

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving", zap.String("address", address))

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	return errC, nil
}

type repositories struct {
	tasks  service.TaskRepository
	users  service.UserRepository
	checks map[string]func(context.Context) error
	close  func()
}

func newRepositories(ctx context.Context, conf *envvar.Configuration, settings internal.Settings, logger *zap.Logger) (*repositories, error) {
	var res repositories

	switch settings.DatabaseDriver {
	case internal.DriverSQLite:
		db, err := internal.NewSQLite(settings)
		if err != nil {
			return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewSQLite")
		}

		res = repositories{
			tasks:  sqlite.NewTask(db),
			users:  sqlite.NewUser(db),
			checks: map[string]func(context.Context) error{"database": db.PingContext},
			close:  func() { _ = db.Close() },
		}
	default:
		pool, err := internal.NewPostgreSQL(ctx, conf)
		if err != nil {
			return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewPostgreSQL")
		}

		res = repositories{
			tasks:  postgresql.NewTask(pool),
			users:  postgresql.NewUser(pool),
			checks: map[string]func(context.Context) error{"database": pool.Ping},
			close:  pool.Close,
		}
	}

	memcache, err := internal.NewMemcached(conf)
	if err != nil {
		res.close()
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewMemcached")
	}

	if memcache != nil {
		res.tasks = memcached.NewTask(memcache, res.tasks, logger)
		res.checks["memcached"] = func(context.Context) error { return memcache.Ping() }

		logger.Info("Caching tasks in memcached")
	}

	return &res, nil
}

func newMessageBroker(conf *envvar.Configuration, settings internal.Settings, logger *zap.Logger) (service.TaskMessageBrokerRepository, func(), error) {
	switch settings.MessageBroker {
	case internal.BrokerKafka:
		producer, err := internal.NewKafkaProducer(conf)
		if err != nil {
			return nil, nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewKafkaProducer")
		}

		go func() {
			for e := range producer.Producer.Events() {
				if msg, ok := e.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
					logger.Warn("Delivering task event", zap.Error(msg.TopicPartition.Error))
				}
			}
		}()

		return kafkabroker.NewTask(producer.Producer, producer.Topic), func() {
			producer.Producer.Flush(5000)
			producer.Producer.Close()
		}, nil
	case internal.BrokerRabbitMQ:
		rmq, err := internal.NewRabbitMQ(conf)
		if err != nil {
			return nil, nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewRabbitMQ")
		}

		return rabbitmq.NewTask(rmq.Channel), rmq.Close, nil
	}

	return service.NopMessageBroker{}, func() {}, nil
}

// bootstrapAdmin creates the initial administrator when ADMIN_USERNAME and ADMIN_PASSWORD are set.
func bootstrapAdmin(ctx context.Context, conf *envvar.Configuration, users *service.User, logger *zap.Logger) error {
	username, err := conf.Get("ADMIN_USERNAME")
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeInvalidArgument, "conf.Get ADMIN_USERNAME")
	}

	password, err := conf.Get("ADMIN_PASSWORD")
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeInvalidArgument, "conf.Get ADMIN_PASSWORD")
	}

	if username == "" || password == "" {
		return nil
	}

	created, err := users.Bootstrap(ctx, username, password)
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "users.Bootstrap")
	}

	if created {
		logger.Info("Administrator created", zap.String("username", username))
	}

	return nil
}

type serverConfig struct {
	Address     string
	Settings    internal.HTTPSettings
	Metrics     http.Handler
	Middlewares []func(next http.Handler) http.Handler
	Web         web.Config
}

func newServer(conf serverConfig) (*http.Server, error) {
	router := chi.NewRouter()

	for _, mw := range conf.Middlewares {
		router.Use(mw)
	}

	if err := web.Register(router, conf.Web); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "web.Register")
	}

	router.Handle("/metrics", conf.Metrics)

	lmt := tollbooth.NewLimiter(conf.Settings.RateLimit, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmtmw := tollbooth.LimitHandler(lmt, router)

	return &http.Server{
		Handler:           lmtmw,
		Addr:              conf.Address,
		ReadTimeout:       conf.Settings.ReadTimeout,
		ReadHeaderTimeout: conf.Settings.ReadTimeout,
		WriteTimeout:      conf.Settings.WriteTimeout,
		IdleTimeout:       conf.Settings.IdleTimeout,
	}, nil
}
