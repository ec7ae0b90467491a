package device

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	m    map[string][]byte
	fail error
}

func newMemStore() *memStore { return &memStore{m: map[string][]byte{}} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	return s.m[key], nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func TestIdentity_GeneratedOnceAndRetained(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first, err := Identity(ctx, store, "pass")
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := Identity(ctx, store, "pass")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIdentity_StoredSealed(t *testing.T) {
	store := newMemStore()
	id, err := Identity(context.Background(), store, "pass")
	require.NoError(t, err)

	assert.NotContains(t, string(store.m[idKey]), id)
	assert.Len(t, store.m[saltKey], saltLen)
}

func TestIdentity_WrongPassphrase(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	_, err := Identity(ctx, store, "right")
	require.NoError(t, err)

	_, err = Identity(ctx, store, "wrong")
	require.ErrorIs(t, err, ErrSealedIdentity)
}

func TestIdentity_StoreError(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("disk")

	_, err := Identity(context.Background(), store, "p")
	require.Error(t, err)
}
