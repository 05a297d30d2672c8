package internal

import (
	esv7 "github.com/elastic/go-elasticsearch/v7"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
)

// NewElasticSearch instantiates the ElasticSearch client using configuration defined in environment variables.
func NewElasticSearch(conf *envvar.Configuration) (*esv7.Client, error) {
	addr, err := conf.Get("ELASTICSEARCH_URL")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get ELASTICSEARCH_URL")
	}

	cfg := esv7.Config{}
	if addr != "" {
		cfg.Addresses = []string{addr}
	}

	es, err := esv7.NewClient(cfg)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "elasticsearch.Open")
	}

	res, err := es.Info()
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "es.Info")
	}

	defer res.Body.Close()

	if res.IsError() {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "es.Info %s", res.Status())
	}

	return es, nil
}
