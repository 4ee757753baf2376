package obs

import (
	"context"
	"time"

	"carrier-search-portal/internal/platform/logger"
)

// Time logs the duration of the named operation when the returned func runs.
// Pass the address of the named error result to record failures.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		l := logger.Ctx(ctx)
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			l.Warn().Str("op", name).Dur("dur", dur).Err(*errp).Msg("operation failed")
			return
		}
		l.Debug().Str("op", name).Dur("dur", dur).Msg("operation done")
	}
}
