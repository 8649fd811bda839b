package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"

	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// ManualTrigger fetches the upstream marker and deploys it unconditionally.
// It never reads or writes latest_tag or last_check. The result is always
// non-nil; Marker is set once the fetch succeeded.
func (e *Engine) ManualTrigger(ctx context.Context) (res *types.ManualResult, err error) {
	ctx, span := e.tracer.Start(ctx, "tagwatch.manual")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res = &types.ManualResult{TriggeredAt: e.now().UTC()}

	marker, ok := e.fetcher.FetchLatestMarker(ctx)
	if !ok {
		e.metrics.FetchFailure(ctx)
		res.Error = ErrFetchFailed.Error()
		return res, ErrFetchFailed
	}
	res.Marker = marker

	ev := types.TriggerEvent{
		Tag:        marker,
		Timestamp:  res.TriggeredAt,
		Trigger:    types.TriggerManual,
		Repository: e.repository,
	}

	if terr := e.deployer.Trigger(ctx, marker, types.TriggerManual); terr != nil {
		e.metrics.Trigger(ctx, string(types.TriggerManual), string(types.OutcomeFailure))
		e.logger.Error("manual deployment trigger failed",
			"repository", e.repository, "tag", marker, "error", terr)

		ev.Outcome = types.OutcomeFailure
		ev.Error = terr.Error()
		e.recordFailure(ctx, provider.PrefixManual, ev)

		res.Error = terr.Error()
		return res, fmt.Errorf("%w: %w", ErrTriggerFailed, terr)
	}
	e.metrics.Trigger(ctx, string(types.TriggerManual), string(types.OutcomeSuccess))

	ev.Outcome = types.OutcomeSuccess
	key, err := e.recordEvent(ctx, provider.PrefixManual, ev)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.EventKey = key

	e.logger.Info("manual deployment triggered",
		"repository", e.repository, "tag", marker, "key", key)
	return res, nil
}
