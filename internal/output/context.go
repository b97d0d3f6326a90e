package output

import "context"

// ctxKey indexes the output settings stored in a context.
type ctxKey int

const (
	formatKey ctxKey = iota
	queryKey
	yesKey
	limitKey
	sortFieldKey
	sortDescKey
	quietKey
)

func valueOr[T any](ctx context.Context, key ctxKey, def T) T {
	if ctx == nil {
		return def
	}
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	return def
}

// WithFormat attaches the output format.
func WithFormat(ctx context.Context, format Format) context.Context {
	return context.WithValue(ctx, formatKey, format)
}

// FormatFromContext returns the output format, FormatText when unset.
func FormatFromContext(ctx context.Context) Format {
	return valueOr(ctx, formatKey, FormatText)
}

// WithQuery attaches a jq expression applied to structured output.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey, query)
}

func QueryFromContext(ctx context.Context) string {
	return valueOr(ctx, queryKey, "")
}

// WithYes records --yes: confirmations are skipped.
func WithYes(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, yesKey, yes)
}

func YesFromContext(ctx context.Context) bool {
	return valueOr(ctx, yesKey, false)
}

// WithLimit records --result-limit. Zero means no limit.
func WithLimit(ctx context.Context, limit int) context.Context {
	return context.WithValue(ctx, limitKey, limit)
}

func LimitFromContext(ctx context.Context) int {
	return valueOr(ctx, limitKey, 0)
}

// WithSort records --result-sort-by and --result-desc.
func WithSort(ctx context.Context, field string, desc bool) context.Context {
	ctx = context.WithValue(ctx, sortFieldKey, field)
	return context.WithValue(ctx, sortDescKey, desc)
}

func SortFromContext(ctx context.Context) (field string, desc bool) {
	return valueOr(ctx, sortFieldKey, ""), valueOr(ctx, sortDescKey, false)
}

// WithQuiet records --quiet: progress messages are suppressed.
func WithQuiet(ctx context.Context, quiet bool) context.Context {
	return context.WithValue(ctx, quietKey, quiet)
}

func QuietFromContext(ctx context.Context) bool {
	return valueOr(ctx, quietKey, false)
}
