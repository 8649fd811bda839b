package commands

import (
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/tagwatch/internal/config"
	intlambda "github.com/dwsmith1983/tagwatch/internal/lambda"
	"github.com/dwsmith1983/tagwatch/internal/schedule"
	"github.com/dwsmith1983/tagwatch/internal/watcher"
)

// NewScheduleCmd creates the schedule command.
func NewScheduleCmd() *cobra.Command {
	var spec schedule.Spec
	var interval string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Create or update the EventBridge schedule that invokes the checker Lambda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if interval == "" {
				interval = cfg.Schedule.Interval
			}
			if spec.Interval, err = config.Duration(interval, watcher.DefaultInterval); err != nil {
				return err
			}
			input, err := json.Marshal(intlambda.CheckRequest{Mode: intlambda.ModeScheduled})
			if err != nil {
				return err
			}
			spec.Input = string(input)

			ctx := cmd.Context()
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return fmt.Errorf("loading AWS config: %w", err)
			}

			res, err := schedule.Ensure(ctx, scheduler.NewFromConfig(awsCfg), spec)
			if err != nil {
				return err
			}
			verb := "Updated"
			if res.Created {
				verb = "Created"
			}
			color.Green("%s schedule %s (%s)", verb, spec.Name, res.Expression)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.ARN)
			return nil
		},
	}
	cmd.Flags().StringVar(&spec.Name, "name", schedule.DefaultName, "schedule name")
	cmd.Flags().StringVar(&spec.Group, "group", "", "schedule group (default group when empty)")
	cmd.Flags().StringVar(&spec.TargetARN, "function-arn", "", "checker Lambda ARN")
	cmd.Flags().StringVar(&spec.RoleARN, "role-arn", "", "IAM role the scheduler assumes")
	cmd.Flags().StringVar(&interval, "interval", "", "check interval (defaults to schedule.interval, 1h)")
	_ = cmd.MarkFlagRequired("function-arn")
	_ = cmd.MarkFlagRequired("role-arn")
	return cmd
}
