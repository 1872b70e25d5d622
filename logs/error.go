package logs

import (
	"context"
	"errors"
	"fmt"
)

// WrapSpan joins the span carried by ctx to err, so failures can be matched with log records.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	span := SpanFrom(ctx)
	if span == "" {
		return err
	}
	return errors.Join(err, fmt.Errorf("span: %s", span))
}
