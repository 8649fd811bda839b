package lambda

import (
	"context"
	"fmt"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// HandleCheck runs a scheduled check or a manual trigger and logs the outcome.
func HandleCheck(ctx context.Context, d *Deps, req CheckRequest) (CheckResponse, error) {
	switch req.Mode {
	case "", ModeScheduled:
		return handleScheduled(ctx, d), nil
	case ModeManual:
		return handleManual(ctx, d), nil
	default:
		return CheckResponse{}, fmt.Errorf("unknown check mode %q", req.Mode)
	}
}

func handleScheduled(ctx context.Context, d *Deps) CheckResponse {
	res, err := d.Engine.CheckForUpdates(ctx)
	resp := CheckResponse{
		Mode:        ModeScheduled,
		Status:      string(res.Status),
		Tag:         res.NewMarker.String(),
		PreviousTag: res.OldMarker.String(),
		Triggered:   res.Triggered() && err == nil,
		EventKey:    res.EventKey,
		Timestamp:   res.CheckedAt.Format(types.TimeFormat),
	}
	if err != nil {
		resp.Error = err.Error()
		d.Logger.Error("scheduled check failed", "status", res.Status, "tag", res.NewMarker, "error", err)
		return resp
	}
	d.Logger.Info("scheduled check complete",
		"status", res.Status, "tag", res.NewMarker, "previousTag", res.OldMarker)
	return resp
}

func handleManual(ctx context.Context, d *Deps) CheckResponse {
	res, err := d.Engine.ManualTrigger(ctx)
	resp := CheckResponse{
		Mode:      ModeManual,
		Tag:       res.Marker.String(),
		Triggered: err == nil,
		EventKey:  res.EventKey,
		Timestamp: res.TriggeredAt.Format(types.TimeFormat),
	}
	if err != nil {
		resp.Error = err.Error()
		d.Logger.Error("manual trigger failed", "tag", res.Marker, "error", err)
		return resp
	}
	d.Logger.Info("manual trigger complete", "tag", res.Marker, "key", res.EventKey)
	return resp
}
