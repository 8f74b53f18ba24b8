// Package pool provides the slot pool registry and its reconciliation core.
//
// The registry owns one pool of recyclable slots per TypeKey and computes the
// minimal mutation between the current bindings and a newly requested
// assignment. The central performance property: an index that is already
// correctly bound generates zero work and zero rebind notifications — only
// the delta between the old and new visible sets costs anything.
//
// # Reconciliation
//
// Applying a PoolAssignment runs in two phases:
//
//  1. Release: slots bound to indices no longer required become free
//     candidates, stamped with a monotonic release counter so the recycle
//     policy can reuse oldest-idle first.
//  2. Bind: required-but-unbound indices are matched to free candidates via
//     the recycle policy; any deficit grows the pool lazily up to the
//     optional capacity ceiling. Every rebind bumps the slot's generation and
//     emits a RebindNotification to the content-binding collaborator.
//
// Two apply modes exist. A reply answering the newest outstanding request
// reconciles fully (both phases). An older, superseded reply merges: it
// upserts only indices the current window still requires and never releases
// bindings it does not reference, so partial progress from a stale reply is
// kept without evicting newer reconciliations (last reconciled wins per
// index, keyed by arrival order).
//
// # Concurrency
//
// The registry has exactly one mutator: the coordinator's run loop. It is
// deliberately lock-free — the content actor only produces assignments and
// never touches pool state.
package pool
