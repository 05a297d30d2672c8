// Package vault resolves secrets stored in a HashiCorp Vault KV v2 engine.
package vault

import (
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/vault/api"

	"github.com/sanLimbu/todo-app/internal"
)

// Provider reads secrets as "<secret>:<field>", each secret is read once.
type Provider struct {
	path    string
	client  *api.Logical
	mu      sync.Mutex
	secrets map[string]map[string]interface{}
}

// New instantiates the Vault client, mountPath is the KV v2 mount, usually "secret".
func New(token, addr, mountPath string) (*Provider, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		path:    mountPath,
		client:  client.Logical(),
		secrets: map[string]map[string]interface{}{},
	}, nil
}

// Get retrieves the field of a secret, v must be formatted as "<secret>:<field>".
func (p *Provider) Get(v string) (string, error) {
	name, field, ok := strings.Cut(v, ":")
	if !ok || name == "" || field == "" {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "missing field in %q", v)
	}

	data, err := p.secret(name)
	if err != nil {
		return "", err
	}

	val, ok := data[field].(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "field %q not found in secret %q", field, name)
	}

	return val, nil
}

func (p *Provider) secret(name string) (map[string]interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if data, ok := p.secrets[name]; ok {
		return data, nil
	}

	secret, err := p.client.Read(path.Join(p.path, "data", name))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Read")
	}

	if secret == nil {
		return nil, internal.NewErrorf(internal.ErrorCodeNotFound, "secret %q not found", name)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "secret %q has no data", name)
	}

	p.secrets[name] = data

	return data, nil
}
