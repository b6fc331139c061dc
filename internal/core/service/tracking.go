package service

import (
	"context"
	"time"

	"securetodo/internal/core/port"
)

// track opens a service span and returns the function that closes it.
func track(ctx context.Context, probe port.Telemetry, service, operation string, userID int) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := probe.StartServiceSpan(ctx, service, operation, userID, nil)

	return ctx, func(err error) {
		if err != nil {
			span.SetStatus("error", err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus("ok", "")
		}

		probe.RecordServiceOperation(ctx, service, operation, userID, time.Since(start), err)
		span.End()
	}
}
