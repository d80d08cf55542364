package counter

import (
	"context"
	"strconv"

	"github.com/plushify/plushify/internal/pkg/cache"
)

// Generation outcome counters, kept in a Redis hash for the admin dashboard.
// Increments are best-effort: a cache outage must never fail a generation.
const (
	generationCountersKey = "generation:counters"

	OutcomeSucceeded    = "succeeded"
	OutcomeFailed       = "failed"
	OutcomeTimedOut     = "timed_out"
	OutcomeRefunded     = "refunded"
	OutcomeRefundFailed = "refund_failed"
)

// AddGenerationOutcome increments the counter for one generation outcome.
func AddGenerationOutcome(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, generationCountersKey, outcome, 1).Err()
}

// GenerationCounters returns all outcome counters.
func GenerationCounters() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, generationCountersKey).Result()
	if err != nil {
		return nil, err
	}

	counters := make(map[string]int64, len(data))
	for k, v := range data {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counters[k] = n
	}
	return counters, nil
}
