// Package envvar reads configuration from environment variables, optionally resolving
// secrets through a Provider.
package envvar

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sanLimbu/todo-app/internal"
)

// Provider retrieves secret values.
type Provider interface {
	Get(key string) (string, error)
}

// Configuration gets values from environment variables, delegating to the Provider for
// secured ones.
type Configuration struct {
	provider Provider
}

// Load reads the env filename and loads it into ENV for this process.
func Load(filename string) error {
	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "loading env var file")
	}

	return nil
}

// New instantiates Configuration, provider may be nil when no secrets are used.
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

// Get returns the value of the environment variable key. When key_SECURE is defined its
// value is used for asking the Provider instead.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	secure := os.Getenv(fmt.Sprintf("%s_SECURE", key))
	if secure == "" {
		return res, nil
	}

	if c.provider == nil {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "%s_SECURE set without a secrets provider", key)
	}

	val, err := c.provider.Get(secure)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "provider.Get")
	}

	return val, nil
}
