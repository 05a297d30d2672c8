package internal

import (
	"os"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
	"github.com/sanLimbu/todo-app/internal/envvar/vault"
)

// NewVaultProvider instantiates the Vault client using configuration defined in environment variables.
// Without VAULT_ADDRESS no provider is used and _SECURE variables are rejected.
func NewVaultProvider() (envvar.Provider, error) {
	vaultPath := os.Getenv("VAULT_PATH")
	vaultToken := os.Getenv("VAULT_TOKEN")
	vaultAddress := os.Getenv("VAULT_ADDRESS")

	if vaultAddress == "" {
		return nil, nil
	}

	provider, err := vault.New(vaultToken, vaultAddress, vaultPath)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "vault.New")
	}

	return provider, nil
}
