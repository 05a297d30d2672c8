package internal

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
)

// NewRedis instantiates the Redis client using configuration defined in environment variables.
func NewRedis(ctx context.Context, conf *envvar.Configuration) (*redis.Client, error) {
	host, err := conf.Get("REDIS_HOST")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get REDIS_HOST")
	}

	db, err := conf.Get("REDIS_DB")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get REDIS_DB")
	}

	var dbi int

	if db != "" {
		if dbi, err = strconv.Atoi(db); err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "strconv.Atoi REDIS_DB")
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: host,
		DB:   dbi,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rdb.Ping")
	}

	return rdb, nil
}
