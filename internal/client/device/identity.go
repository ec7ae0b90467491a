// Package device manages the stable per-installation identifier that scopes
// remote history. The identifier is generated once, sealed with AES-GCM under
// a passphrase-derived key and kept in the metadata store.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/qrscan/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/qrscan/internal/cryptox"
	"github.com/google/uuid"
)

const (
	saltKey = "device_id_salt"
	idKey   = "device_id"
	saltLen = 16
)

// ErrSealedIdentity is returned when the stored identifier cannot be opened,
// usually because the passphrase changed.
var ErrSealedIdentity = errors.New("cannot open sealed device identifier")

// Identity returns the installation identifier, creating and persisting it
// on first use.
func Identity(ctx context.Context, store metadata.Repository, passphrase string) (string, error) {
	salt, err := store.Get(ctx, saltKey)
	if err != nil {
		return "", err
	}
	sealed, err := store.Get(ctx, idKey)
	if err != nil {
		return "", err
	}

	if salt != nil && sealed != nil {
		key := cryptox.DeriveKey([]byte(passphrase), salt)
		defer cryptox.Wipe(key)
		id, err := cryptox.Open(key, sealed)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSealedIdentity, err)
		}
		return string(id), nil
	}

	return create(ctx, store, passphrase)
}

func create(ctx context.Context, store metadata.Repository, passphrase string) (string, error) {
	salt, err := cryptox.RandomBytes(saltLen)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	key := cryptox.DeriveKey([]byte(passphrase), salt)
	defer cryptox.Wipe(key)
	sealed, err := cryptox.Seal(key, []byte(id))
	if err != nil {
		return "", fmt.Errorf("seal device identifier: %w", err)
	}

	if err := store.Set(ctx, saltKey, salt); err != nil {
		return "", err
	}
	if err := store.Set(ctx, idKey, sealed); err != nil {
		return "", err
	}
	return id, nil
}
