package internal

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
)

// NewMemcached instantiates the Memcached client using configuration defined in environment variables.
// A nil client is returned when MEMCACHED_HOST is not set.
func NewMemcached(conf *envvar.Configuration) (*memcache.Client, error) {
	host, err := conf.Get("MEMCACHED_HOST")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get MEMCACHED_HOST")
	}

	if host == "" {
		return nil, nil
	}

	// XXX Assuming environment variable contains only one server
	client := memcache.New(host)

	if err := client.Ping(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Ping")
	}

	client.Timeout = 100 * time.Millisecond
	client.MaxIdleConns = 100

	return client, nil
}
