package history

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/dmitrijs2005/qrscan/internal/logging"
)

// Remote is the remote side of one record kind.
type Remote[R Keyed, M any] interface {
	Fetch(ctx context.Context) ([]R, error)
	Append(ctx context.Context, key string, meta M) (R, error)
}

// Cache is the local store of one record kind. scans.Repository and
// codes.Repository implement it.
type Cache[R Keyed] interface {
	List(ctx context.Context) ([]R, error)
	ReplaceAll(ctx context.Context, records []R) error
	Prepend(ctx context.Context, r R) error
	Delete(ctx context.Context, key string) error
}

// Collection is the synchronized list of one record kind. Its state is
// owned by the shared actor.
type Collection[R Keyed, M any] struct {
	name   string
	actor  *Actor
	remote Remote[R, M]
	cache  Cache[R]
	log    logging.Logger

	// Actor-owned.
	ledger  *ledger[R]
	pending map[string]struct{}
	issued  uint64
	applied uint64
}

// NewCollection binds a record kind to actor. cache may be nil.
func NewCollection[R Keyed, M any](name string, actor *Actor, remote Remote[R, M], cache Cache[R], log logging.Logger) *Collection[R, M] {
	if log == nil {
		log = logging.Nop()
	}
	return &Collection[R, M]{
		name:    name,
		actor:   actor,
		remote:  remote,
		cache:   cache,
		log:     log.With("collection", name),
		ledger:  newLedger[R](),
		pending: make(map[string]struct{}),
	}
}

// Restore loads the local cache into memory. Without a cache it is a no-op.
func (c *Collection[R, M]) Restore(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	var err error
	if doErr := c.actor.Do(ctx, func() {
		var records []R
		records, err = c.cache.List(ctx)
		if err != nil {
			return
		}
		c.ledger.replace(records)
	}); doErr != nil {
		return doErr
	}
	return err
}

// LoadRemote fetches the full remote collection and replaces the local list
// with it. On any failure local state is untouched.
func (c *Collection[R, M]) LoadRemote(ctx context.Context) error {
	var gen uint64
	if err := c.actor.Do(ctx, func() {
		c.issued++
		gen = c.issued
	}); err != nil {
		return err
	}

	records, err := c.remote.Fetch(ctx)
	if err != nil {
		c.log.Warn(ctx, "reload failed, keeping local state", "error", err)
		return err
	}

	stale := false
	if err := c.actor.Do(context.WithoutCancel(ctx), func() {
		if gen < c.applied {
			stale = true
			return
		}
		c.applied = gen
		applied := c.ledger.replace(records)
		c.writeThrough(ctx, "replace", func(ctx context.Context) error {
			return c.cache.ReplaceAll(ctx, applied)
		})
	}); err != nil {
		return err
	}
	if stale {
		c.log.Debug(ctx, "discarded stale reload", "generation", gen)
		return ErrStaleResponse
	}
	c.log.Info(ctx, "reloaded from remote", "records", len(records))
	return nil
}

// RecordLocalEvent appends key remotely and, once the remote confirms,
// inserts the record at the head. It reports whether a record was inserted.
// A key that is present or already being appended is a no-op.
func (c *Collection[R, M]) RecordLocalEvent(ctx context.Context, key string, meta M) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	skip := false
	if err := c.actor.Do(ctx, func() {
		if c.ledger.contains(key) {
			skip = true
			return
		}
		if _, inFlight := c.pending[key]; inFlight {
			skip = true
			return
		}
		c.pending[key] = struct{}{}
	}); err != nil {
		return false, err
	}
	if skip {
		return false, nil
	}

	rec, appendErr := c.remote.Append(ctx, key, meta)

	inserted := false
	if err := c.actor.Do(context.WithoutCancel(ctx), func() {
		delete(c.pending, key)
		if appendErr != nil {
			return
		}
		if inserted = c.ledger.prepend(rec); inserted {
			c.writeThrough(ctx, "prepend", func(ctx context.Context) error {
				return c.cache.Prepend(ctx, rec)
			})
		}
	}); err != nil {
		return false, err
	}
	if appendErr != nil {
		c.log.Warn(ctx, "append failed, record not inserted", "key", key, "error", appendErr)
		return false, appendErr
	}
	return inserted, nil
}

// Delete removes key locally. The remote is not told.
func (c *Collection[R, M]) Delete(ctx context.Context, key string) (bool, error) {
	removed := false
	err := c.actor.Do(ctx, func() {
		if removed = c.ledger.remove(key); removed {
			c.writeThrough(ctx, "delete", func(ctx context.Context) error {
				if err := c.cache.Delete(ctx, key); err != nil && !errors.Is(err, common.ErrorNotFound) {
					return err
				}
				return nil
			})
		}
	})
	return removed, err
}

// Records returns a copy of the list, head first.
func (c *Collection[R, M]) Records(ctx context.Context) ([]R, error) {
	var out []R
	err := c.actor.Do(ctx, func() { out = c.ledger.snapshot() })
	return out, err
}

// Contains reports whether key is in the key set.
func (c *Collection[R, M]) Contains(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := c.actor.Do(ctx, func() { ok = c.ledger.contains(key) })
	return ok, err
}

// Verify checks the key-set invariant.
func (c *Collection[R, M]) Verify(ctx context.Context) error {
	var verr error
	if err := c.actor.Do(ctx, func() { verr = c.ledger.verify() }); err != nil {
		return err
	}
	return verr
}

// writeThrough mirrors a mutation into the cache. Must run on the actor.
func (c *Collection[R, M]) writeThrough(ctx context.Context, op string, fn func(ctx context.Context) error) {
	if c.cache == nil {
		return
	}
	if err := fn(context.WithoutCancel(ctx)); err != nil {
		c.log.Error(ctx, "cache write failed", "op", op, "error", err)
	}
}
