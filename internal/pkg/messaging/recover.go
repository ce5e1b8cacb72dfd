package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/pkg/stacktrace"
)

// dispatch runs handler, turning a panic into an error, and logs failures.
func dispatch(ctx context.Context, driver string, handler Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, stacktrace.Attr())
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to handle message", "driver", driver, "source", msg.Source, "error", err)
		}
	}()

	return handler(ctx, msg)
}

func validateConsume(ctx context.Context, source string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	return nil
}
