// checker Lambda runs the release check. EventBridge Scheduler invokes it
// hourly with an empty payload; {"mode":"manual"} forces a deployment.
package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	intlambda "github.com/dwsmith1983/tagwatch/internal/lambda"
	"github.com/dwsmith1983/tagwatch/internal/upstream"
)

var version = "dev"

var (
	deps     *intlambda.Deps
	depsOnce sync.Once
	depsErr  error
)

func getDeps() (*intlambda.Deps, error) {
	depsOnce.Do(func() {
		deps, depsErr = intlambda.Init(context.Background())
	})
	return deps, depsErr
}

func handler(ctx context.Context, req intlambda.CheckRequest) (intlambda.CheckResponse, error) {
	d, err := getDeps()
	if err != nil {
		return intlambda.CheckResponse{}, err
	}
	return handle(ctx, d, req)
}

func handle(ctx context.Context, d *intlambda.Deps, req intlambda.CheckRequest) (intlambda.CheckResponse, error) {
	defer func() {
		if err := d.Telemetry.Flush(context.WithoutCancel(ctx)); err != nil {
			d.Logger.Warn("telemetry flush failed", "error", err)
		}
	}()
	return intlambda.HandleCheck(ctx, d, req)
}

func main() {
	upstream.UserAgent = "tagwatch/" + version
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
