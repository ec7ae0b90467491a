// Package history keeps the local, deduplicated record lists for scans and
// created codes and synchronizes them with the remote activity log.
//
// # Single writer
//
// All list and key-set mutation runs on one Actor goroutine. Collections
// never lock: callers from the capture pipeline, from remote completions
// and from user deletions all submit closures through Actor.Do. Remote
// calls run outside the actor and only their results are applied on it.
//
// # Invariants
//
// For each collection the key set equals the set of keys of the ordered
// list, with exactly one record per key. A local event is inserted at the
// head only after the remote confirmed it. LoadRemote replaces the whole
// list in remote order. Responses to a LoadRemote that was overtaken by a
// newer one are discarded with ErrStaleResponse.
//
// # Local cache
//
// Applied mutations are written through to the SQLite cache from inside
// the actor. Cache failures are logged; memory stays authoritative.
package history
