// Package async provides the deferred-result and background-task primitives
// used throughout the store service.
//
// # Overview
//
// Collection operations never complete within the call frame that issued
// them: each returns a Future whose value becomes available on a later
// goroutine scheduling. The package also provides SafeGo for fire-and-forget
// background work with panic recovery and timeout enforcement.
//
// # Key Types
//
// Future: a single-assignment deferred result
//
//	f := async.Go(ctx, func(ctx context.Context) (int, error) {
//		return fetchCount(ctx)
//	})
//	n, err := f.Await(ctx)
//
// SafeGo: execute a function in a goroutine with safety features
//
//	async.SafeGo(r.Context(), 5*time.Second, "audit log", func(ctx context.Context) error {
//		return audit.Record(ctx, entry)
//	})
//
// # Guarantees
//
// A Future is never resolved synchronously, even when constructed from an
// already-known value via Resolve or Reject. Callers must therefore always
// Await (or select on Done) and must not assume immediate completion.
package async
