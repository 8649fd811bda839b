// Package schedule provisions the EventBridge Scheduler rule that invokes the
// checker Lambda.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	schedtypes "github.com/aws/aws-sdk-go-v2/service/scheduler/types"
)

// DefaultName is the schedule name used when none is given.
const DefaultName = "tagwatch-check"

// SchedulerAPI is the subset of the EventBridge Scheduler client used here.
type SchedulerAPI interface {
	CreateSchedule(ctx context.Context, input *scheduler.CreateScheduleInput, opts ...func(*scheduler.Options)) (*scheduler.CreateScheduleOutput, error)
	UpdateSchedule(ctx context.Context, input *scheduler.UpdateScheduleInput, opts ...func(*scheduler.Options)) (*scheduler.UpdateScheduleOutput, error)
}

// Spec describes the desired schedule.
type Spec struct {
	Name      string
	Group     string
	Interval  time.Duration
	TargetARN string
	RoleARN   string
	// Input is the JSON payload delivered to the target.
	Input string
}

// Result reports what Ensure did.
type Result struct {
	ARN        string
	Expression string
	Created    bool
}

// RateExpression renders d as a Scheduler rate expression. d is truncated to
// whole minutes and must be at least one minute.
func RateExpression(d time.Duration) (string, error) {
	if d < time.Minute {
		return "", fmt.Errorf("interval %s is below the one minute minimum", d)
	}
	var (
		n    int64
		unit string
	)
	switch {
	case d%(24*time.Hour) == 0:
		n, unit = int64(d/(24*time.Hour)), "day"
	case d%time.Hour == 0:
		n, unit = int64(d/time.Hour), "hour"
	default:
		n, unit = int64(d/time.Minute), "minute"
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("rate(%d %s)", n, unit), nil
}

// Ensure creates the schedule, or updates it in place when one with the same
// name already exists.
func Ensure(ctx context.Context, client SchedulerAPI, spec Spec) (*Result, error) {
	if spec.TargetARN == "" || spec.RoleARN == "" {
		return nil, errors.New("schedule target ARN and role ARN are required")
	}
	if spec.Name == "" {
		spec.Name = DefaultName
	}
	expr, err := RateExpression(spec.Interval)
	if err != nil {
		return nil, err
	}

	target := &schedtypes.Target{
		Arn:     aws.String(spec.TargetARN),
		RoleArn: aws.String(spec.RoleARN),
	}
	if spec.Input != "" {
		target.Input = aws.String(spec.Input)
	}
	window := &schedtypes.FlexibleTimeWindow{Mode: schedtypes.FlexibleTimeWindowModeOff}
	var group *string
	if spec.Group != "" {
		group = aws.String(spec.Group)
	}

	created, err := client.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
		Name:               aws.String(spec.Name),
		GroupName:          group,
		ScheduleExpression: aws.String(expr),
		FlexibleTimeWindow: window,
		Target:             target,
		State:              schedtypes.ScheduleStateEnabled,
		Description:        aws.String("tagwatch release check"),
	})
	if err == nil {
		return &Result{ARN: aws.ToString(created.ScheduleArn), Expression: expr, Created: true}, nil
	}

	var conflict *schedtypes.ConflictException
	if !errors.As(err, &conflict) {
		return nil, fmt.Errorf("creating schedule %q: %w", spec.Name, err)
	}

	updated, err := client.UpdateSchedule(ctx, &scheduler.UpdateScheduleInput{
		Name:               aws.String(spec.Name),
		GroupName:          group,
		ScheduleExpression: aws.String(expr),
		FlexibleTimeWindow: window,
		Target:             target,
		State:              schedtypes.ScheduleStateEnabled,
		Description:        aws.String("tagwatch release check"),
	})
	if err != nil {
		return nil, fmt.Errorf("updating schedule %q: %w", spec.Name, err)
	}
	return &Result{ARN: aws.ToString(updated.ScheduleArn), Expression: expr}, nil
}
