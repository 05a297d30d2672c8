package internal

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sanLimbu/todo-app/internal"
)

// Settings defines the tunables read from environment variables, secrets and connection
// details go through envvar.Configuration instead.
type Settings struct {
	ServiceName    string        `env:"SERVICE_NAME"          envDefault:"todo-app"`
	DatabaseDriver string        `env:"DATABASE_DRIVER"       envDefault:"postgres"`
	SQLitePath     string        `env:"SQLITE_PATH"           envDefault:"todo.db"`
	MessageBroker  string        `env:"MESSAGE_BROKER"        envDefault:"none"`
	SessionTTL     time.Duration `env:"SESSION_TTL"           envDefault:"24h"`
	SessionSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	HTTP           HTTPSettings
}

// HTTPSettings configures the HTTP server.
type HTTPSettings struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"5s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	RateLimit       float64       `env:"HTTP_RATE_LIMIT"       envDefault:"10"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Message brokers.
const (
	BrokerNone     = "none"
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
)

// NewSettings parses Settings from the environment.
func NewSettings() (Settings, error) {
	var res Settings

	if err := env.Parse(&res); err != nil {
		return Settings{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "env.Parse")
	}

	switch res.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return Settings{}, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "unknown DATABASE_DRIVER %q", res.DatabaseDriver)
	}

	switch res.MessageBroker {
	case BrokerNone, BrokerKafka, BrokerRabbitMQ:
	default:
		return Settings{}, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "unknown MESSAGE_BROKER %q", res.MessageBroker)
	}

	return res, nil
}
