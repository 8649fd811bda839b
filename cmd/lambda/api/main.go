// api Lambda serves the tagwatch HTTP routes behind an API Gateway HTTP API.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"

	intlambda "github.com/dwsmith1983/tagwatch/internal/lambda"
	"github.com/dwsmith1983/tagwatch/internal/server"
	"github.com/dwsmith1983/tagwatch/internal/upstream"
)

var version = "dev"

var (
	router     http.Handler
	deps       *intlambda.Deps
	routerOnce sync.Once
)

// getRouter wires the API once per sandbox. A wiring failure, such as a
// missing TABLE_NAME, yields a handler that answers every route with 500.
func getRouter() (http.Handler, *intlambda.Deps) {
	routerOnce.Do(func() {
		d, err := intlambda.Init(context.Background())
		if err != nil {
			slog.Error("tagwatch API init failed", "error", err)
			router = server.Unavailable(err)
			return
		}
		deps = d
		router = server.New("", d.Engine, d.Logger).Handler()
	})
	return router, deps
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	h, d := getRouter()
	if d != nil {
		defer func() {
			if err := d.Telemetry.Flush(context.WithoutCancel(ctx)); err != nil {
				d.Logger.Warn("telemetry flush failed", "error", err)
			}
		}()
	}
	return intlambda.ServeAPIGatewayV2(ctx, h, req)
}

func main() {
	upstream.UserAgent = "tagwatch/" + version
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
