package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// CheckForUpdates runs one check-and-trigger pass.
//
// The result is always non-nil and describes how far the pass got, so
// callers can render old and new markers even when an error is returned.
// A failed trigger leaves latest_tag and last_check untouched so the next
// pass retries the same change.
func (e *Engine) CheckForUpdates(ctx context.Context) (res *types.CheckResult, err error) {
	ctx, span := e.tracer.Start(ctx, "tagwatch.check")
	defer func() {
		span.SetAttributes(attribute.String("status", string(res.Status)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		e.metrics.Check(ctx, string(res.Status))
	}()

	res = &types.CheckResult{CheckedAt: e.now().UTC()}

	if e.locker != nil && e.leaseTTL > 0 {
		acquired, err := e.locker.AcquireLock(ctx, provider.LockCheck, e.leaseTTL)
		if err != nil {
			e.metrics.StoreError(ctx, "lock")
			res.Status = types.CheckStoreFailed
			res.Error = err.Error()
			return res, &StoreError{Op: "lock", Key: provider.LockCheck, Err: err}
		}
		if !acquired {
			e.logger.Info("check already in progress, skipping", "repository", e.repository)
			res.Status = types.CheckSkipped
			return res, nil
		}
		defer func() {
			if err := e.locker.ReleaseLock(context.WithoutCancel(ctx), provider.LockCheck); err != nil {
				e.logger.Warn("failed to release check lease", "error", err)
			}
		}()
	}

	latest, ok := e.fetcher.FetchLatestMarker(ctx)
	if !ok {
		e.metrics.FetchFailure(ctx)
		res.Status = types.CheckFetchFailed
		res.Error = ErrFetchFailed.Error()
		return res, ErrFetchFailed
	}
	res.NewMarker = latest

	stored, _, err := e.get(ctx, provider.KeyLatestTag)
	if err != nil {
		res.Status = types.CheckStoreFailed
		res.Error = err.Error()
		return res, err
	}
	previous := types.VersionMarker(stored)
	res.OldMarker = previous

	if previous == latest {
		res.Status = types.CheckNoUpdate
		if err := e.put(ctx, provider.KeyLastCheck, res.CheckedAt.Format(types.TimeFormat)); err != nil {
			res.Error = err.Error()
			return res, err
		}
		e.logger.Debug("no new release", "repository", e.repository, "tag", latest)
		return res, nil
	}

	e.logger.Info("new release detected",
		"repository", e.repository, "tag", latest, "previousTag", previous)

	ev := types.TriggerEvent{
		Tag:         latest,
		PreviousTag: previous,
		Timestamp:   res.CheckedAt,
		Trigger:     types.TriggerScheduled,
		Repository:  e.repository,
	}

	if terr := e.deployer.Trigger(ctx, latest, types.TriggerScheduled); terr != nil {
		e.metrics.Trigger(ctx, string(types.TriggerScheduled), string(types.OutcomeFailure))
		e.logger.Error("deployment trigger failed",
			"repository", e.repository, "tag", latest, "error", terr)

		ev.Outcome = types.OutcomeFailure
		ev.Error = terr.Error()
		e.recordFailure(ctx, provider.PrefixDeploy, ev)

		res.Status = types.CheckTriggerFailed
		res.Error = terr.Error()
		return res, fmt.Errorf("%w: %w", ErrTriggerFailed, terr)
	}
	e.metrics.Trigger(ctx, string(types.TriggerScheduled), string(types.OutcomeSuccess))
	res.Status = types.CheckTriggered

	if err := e.put(ctx, provider.KeyLatestTag, latest.String()); err != nil {
		res.Error = err.Error()
		return res, err
	}

	ev.Outcome = types.OutcomeSuccess
	key, err := e.recordEvent(ctx, provider.PrefixDeploy, ev)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.EventKey = key

	if err := e.put(ctx, provider.KeyLastCheck, res.CheckedAt.Format(types.TimeFormat)); err != nil {
		res.Error = err.Error()
		return res, err
	}

	e.logger.Info("deployment triggered",
		"repository", e.repository, "tag", latest, "previousTag", previous, "key", key)
	return res, nil
}
