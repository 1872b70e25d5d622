package logs

import "context"

// Span identifies one logical flow, such as a single engine request, across log records.
type Span string

type spanKey struct{}

var SpanKey spanKey

func SpanFrom(ctx context.Context) Span {
	if v, ok := ctx.Value(SpanKey).(Span); ok {
		return v
	}
	return ""
}
