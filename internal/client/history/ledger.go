package history

import "fmt"

// Keyed is a record with a canonical dedup key.
type Keyed interface {
	Key() string
}

// ledger is an ordered record list plus its key set. Every method keeps
// keys == {r.Key() | r in records} with one record per key.
type ledger[R Keyed] struct {
	records []R
	keys    map[string]struct{}
}

func newLedger[R Keyed]() *ledger[R] {
	return &ledger[R]{keys: make(map[string]struct{})}
}

func (l *ledger[R]) contains(key string) bool {
	_, ok := l.keys[key]
	return ok
}

func (l *ledger[R]) len() int { return len(l.records) }

// prepend inserts r at the head unless its key is present.
func (l *ledger[R]) prepend(r R) bool {
	k := r.Key()
	if k == "" || l.contains(k) {
		return false
	}
	l.records = append([]R{r}, l.records...)
	l.keys[k] = struct{}{}
	return true
}

// replace swaps in rs, keeping its order. Keyless records and repeated keys
// after the first occurrence are skipped. It returns what was applied.
func (l *ledger[R]) replace(rs []R) []R {
	records := make([]R, 0, len(rs))
	keys := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		k := r.Key()
		if k == "" {
			continue
		}
		if _, dup := keys[k]; dup {
			continue
		}
		keys[k] = struct{}{}
		records = append(records, r)
	}
	l.records, l.keys = records, keys
	return records
}

func (l *ledger[R]) remove(key string) bool {
	if !l.contains(key) {
		return false
	}
	for i, r := range l.records {
		if r.Key() == key {
			l.records = append(l.records[:i:i], l.records[i+1:]...)
			break
		}
	}
	delete(l.keys, key)
	return true
}

func (l *ledger[R]) snapshot() []R {
	out := make([]R, len(l.records))
	copy(out, l.records)
	return out
}

// verify checks the key-set bijection.
func (l *ledger[R]) verify() error {
	seen := make(map[string]struct{}, len(l.records))
	for _, r := range l.records {
		k := r.Key()
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate record for key %q", k)
		}
		if !l.contains(k) {
			return fmt.Errorf("record %q missing from key set", k)
		}
		seen[k] = struct{}{}
	}
	if len(seen) != len(l.keys) {
		return fmt.Errorf("key set has %d keys for %d records", len(l.keys), len(seen))
	}
	return nil
}
