// Package lock provides an advisory, lease-based distributed lock over a
// shared key-value store. A Manager derives lock keys from a configured
// collection namespace and a caller-supplied resource id, acquires a
// lease with a single atomic set-if-absent attempt, and keeps it alive
// through a background renewal loop until the scope is released. Release
// and renewal are token-guarded compare-and-act operations evaluated
// atomically at the store, so a holder can never delete or extend a
// lease it has already lost.
//
// The lock is cooperative: it does not fence stale holders, and it
// assumes reasonably synchronized clocks across processes. A holder that
// crashes or stalls past its lease simply lets the store expire the key,
// which is the intended recovery path.
package lock
