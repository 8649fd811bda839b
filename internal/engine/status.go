package engine

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Status renders the current state and the most recent scheduled
// deployment records.
func (e *Engine) Status(ctx context.Context) (*types.StatusSnapshot, error) {
	ctx, span := e.tracer.Start(ctx, "tagwatch.status")
	defer span.End()

	snap := &types.StatusSnapshot{
		Status:     "running",
		CurrentTag: types.NoMarker,
		LastCheck:  types.NeverCheck,
		Repository: e.repository,
	}

	if v, ok, err := e.get(ctx, provider.KeyLatestTag); err != nil {
		return nil, err
	} else if ok && v != "" {
		snap.CurrentTag = v
	}

	if v, ok, err := e.get(ctx, provider.KeyLastCheck); err != nil {
		return nil, err
	} else if ok && v != "" {
		snap.LastCheck = v
	}

	events, err := e.recent(ctx, provider.PrefixDeploy, StatusLimit)
	if err != nil {
		return nil, err
	}
	snap.RecentDeployments = events
	return snap, nil
}

// History returns up to limit scheduled and manual events, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]types.TriggerEvent, error) {
	if limit <= 0 {
		limit = StatusLimit
	}

	var all []types.TriggerEvent
	for _, prefix := range []string{provider.PrefixDeploy, provider.PrefixManual} {
		events, err := e.recent(ctx, prefix, limit)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}

	sortNewestFirst(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// recent loads the last limit records under prefix by key order and returns
// them newest first by their own timestamp. Missing or malformed records are
// skipped.
func (e *Engine) recent(ctx context.Context, prefix string, limit int) ([]types.TriggerEvent, error) {
	keys, err := e.store.List(ctx, prefix)
	if err != nil {
		e.metrics.StoreError(ctx, "list")
		return nil, &StoreError{Op: "list", Key: prefix, Err: err}
	}
	if len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}

	events := make([]types.TriggerEvent, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := e.get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.logger.Warn("skipping missing event record", "key", key)
			continue
		}
		var ev types.TriggerEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			e.logger.Warn("skipping malformed event record", "key", key, "error", err)
			continue
		}
		events = append(events, ev)
	}

	sortNewestFirst(events)
	return events, nil
}

func sortNewestFirst(events []types.TriggerEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}
