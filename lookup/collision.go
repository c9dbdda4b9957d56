package lookup

import "context"

// CollisionHook is notified when a prefix predicate matched more than one
// row. It must not change which row is returned.
type CollisionHook func(ctx context.Context, pred Predicate, matches int)

// First returns the first of rows, all of which are assumed to satisfy pred.
// When more than one row is present the hook, if any, is told how many
// matched. Callers that want to detect collisions should fetch at least two
// rows. Rows may be Row values or any typed record scanned from storage.
func First[T any](ctx context.Context, rows []T, pred Predicate, hook CollisionHook) (T, bool) {
	if len(rows) == 0 {
		var zero T
		return zero, false
	}
	if len(rows) > 1 && hook != nil {
		hook(ctx, pred, len(rows))
	}
	return rows[0], true
}

// ChainCollisionHooks returns a hook that calls every non-nil hook in order.
func ChainCollisionHooks(hooks ...CollisionHook) CollisionHook {
	return func(ctx context.Context, pred Predicate, matches int) {
		for _, h := range hooks {
			if h != nil {
				h(ctx, pred, matches)
			}
		}
	}
}
