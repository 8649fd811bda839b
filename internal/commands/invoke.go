package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/spf13/cobra"

	intlambda "github.com/dwsmith1983/tagwatch/internal/lambda"
)

// LambdaAPI is the subset of the Lambda client used by the invoke command.
type LambdaAPI interface {
	Invoke(ctx context.Context, input *awslambda.InvokeInput, opts ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// NewInvokeCmd creates the invoke command.
func NewInvokeCmd() *cobra.Command {
	var (
		function string
		manual   bool
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Invoke the deployed checker Lambda and print its result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return fmt.Errorf("loading AWS config: %w", err)
			}

			mode := intlambda.ModeScheduled
			if manual {
				mode = intlambda.ModeManual
			}
			resp, err := invokeChecker(ctx, awslambda.NewFromConfig(awsCfg), function, mode)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if resp.Error != "" {
				return fmt.Errorf("check reported failure: %s", resp.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&function, "function", "tagwatch-checker", "checker Lambda name or ARN")
	cmd.Flags().BoolVar(&manual, "manual", false, "force a deployment instead of a scheduled check")
	return cmd
}

func invokeChecker(ctx context.Context, client LambdaAPI, function, mode string) (*intlambda.CheckResponse, error) {
	payload, err := json.Marshal(intlambda.CheckRequest{Mode: mode})
	if err != nil {
		return nil, err
	}

	out, err := client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName:   aws.String(function),
		InvocationType: lambdatypes.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoking %s: %w", function, err)
	}
	if out.FunctionError != nil {
		return nil, fmt.Errorf("%s failed: %s: %s", function, aws.ToString(out.FunctionError), out.Payload)
	}

	var resp intlambda.CheckResponse
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", function, err)
	}
	return &resp, nil
}
