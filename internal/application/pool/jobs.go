package pool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/job"
)

// RefreshPoolsHandler runs refresh_pools jobs.
func (e *Engine) RefreshPoolsHandler() job.Handler {
	return func(ctx context.Context, j *job.Job) (string, error) {
		report, err := e.Reconcile(ctx, j.OwnerKey(), j.Lazy())
		if err != nil {
			return "", err
		}
		return encodeResult(report)
	}
}

// ConsumeProductHandler runs consume_product jobs against the job's target consumer.
func (e *Engine) ConsumeProductHandler() job.Handler {
	return func(ctx context.Context, j *job.Job) (string, error) {
		granted, err := e.AutoAttach(ctx, j.TargetID())
		if err != nil {
			return "", err
		}
		ids := make([]string, 0, len(granted))
		for _, ent := range granted {
			ids = append(ids, ent.ID())
		}
		return encodeResult(map[string]any{
			"consumer_uuid": j.TargetID(),
			"entitlements":  ids,
		})
	}
}

// Handlers maps every job type to its handler.
func (e *Engine) Handlers() map[job.Type]job.Handler {
	return map[job.Type]job.Handler{
		job.TypeRefreshPools:   e.RefreshPoolsHandler(),
		job.TypeConsumeProduct: e.ConsumeProductHandler(),
	}
}

func encodeResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode job result: %w", err)
	}
	return string(b), nil
}
