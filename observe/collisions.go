package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/invoicekit/lookup"
)

// NewCollisionHook returns a lookup.CollisionHook that counts collisions in
// gid.collisions and logs a warning for each one. logger may be nil.
func NewCollisionHook(meter metric.Meter, logger Logger) (lookup.CollisionHook, error) {
	collisions, err := meter.Int64Counter(
		"gid.collisions",
		metric.WithDescription("Lookups whose identifier prefix matched more than one row"),
		metric.WithUnit("{collision}"),
	)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NopLogger()
	}

	return func(ctx context.Context, pred lookup.Predicate, matches int) {
		collisions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("gid.type", pred.Type),
			attribute.String("gid.kind", pred.Kind.String()),
		))
		logger.Warn(ctx, "identifier matched more than one row",
			Field{Key: "gid.type", Value: pred.Type},
			Field{Key: "gid.prefix", Value: pred.Prefix},
			Field{Key: "matches", Value: matches},
		)
	}, nil
}
