package generation

import (
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/plushify/plushify/internal/pkg/metrics/counter"
)

// RedisCounter forwards outcomes to the Redis-backed generation counters.
// Counter writes never fail a request; errors go to the log and nothing else.
type RedisCounter struct{}

func (RedisCounter) AddOutcome(outcome string) {
	if err := counter.AddGenerationOutcome(outcome); err != nil {
		fiberlog.Warnf("[Generation] counter update failed (%s): %v", outcome, err)
	}
}
