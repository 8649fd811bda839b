package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/dwsmith1983/tagwatch/internal/config"
	"github.com/dwsmith1983/tagwatch/internal/deploy"
	"github.com/dwsmith1983/tagwatch/internal/engine"
	"github.com/dwsmith1983/tagwatch/internal/metrics"
	"github.com/dwsmith1983/tagwatch/internal/notify"
	"github.com/dwsmith1983/tagwatch/internal/provider"
	"github.com/dwsmith1983/tagwatch/internal/provider/dynamodb"
	"github.com/dwsmith1983/tagwatch/internal/provider/memory"
	"github.com/dwsmith1983/tagwatch/internal/secrets"
	"github.com/dwsmith1983/tagwatch/internal/telemetry"
	"github.com/dwsmith1983/tagwatch/internal/upstream"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Deps holds shared dependencies for Lambda handlers.
type Deps struct {
	Config    *types.Config
	Provider  provider.Provider
	Engine    *engine.Engine
	Telemetry *telemetry.Telemetry
	Logger    *slog.Logger
}

// Options overrides the AWS clients Build would otherwise create.
type Options struct {
	Secrets     secrets.SecretsManagerAPI
	EventBridge notify.EventBridgeAPI
}

// NewLogger returns the JSON stderr logger used by the Lambdas.
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LogLevel(level),
	}))
}

// Init creates shared dependencies from environment variables.
// Reads: TABLE_NAME, AWS_REGION, UPSTREAM_REPOSITORY, GITHUB_TOKEN,
// DEPLOY_WEBHOOK_URL and the other keys handled by config.ApplyEnv.
func Init(ctx context.Context) (*Deps, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return Build(ctx, cfg, NewLogger(cfg.LogLevel), Options{})
}

// Build wires dependencies from a resolved configuration.
func Build(ctx context.Context, cfg *types.Config, logger *slog.Logger, opts Options) (*Deps, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if secrets.Needed(cfg) {
		var resolver *secrets.Resolver
		if opts.Secrets != nil {
			resolver = secrets.NewResolver(opts.Secrets)
		} else {
			awsCfg, err := loadAWS(ctx, cfg)
			if err != nil {
				return nil, err
			}
			resolver = secrets.NewFromConfig(awsCfg)
		}
		if err := resolver.Apply(ctx, cfg); err != nil {
			return nil, err
		}
	}

	prov, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	rec, err := metrics.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	githubTimeout, _ := config.Duration(cfg.GitHub.Timeout, upstream.DefaultTimeout)
	gh := upstream.NewGitHubClient(cfg.GitHub.APIURL, cfg.Repository, cfg.GitHub.Token, githubTimeout)
	gh.SetLogger(logger)

	webhookTimeout, _ := config.Duration(cfg.Webhook.Timeout, 0)
	wh := deploy.NewWebhook(cfg.Webhook.URL, cfg.Repository, cfg.Webhook.Format, webhookTimeout)
	wh.SetLogger(logger)

	eng := engine.New(prov, gh, wh)
	eng.SetLogger(logger)
	eng.SetRepository(cfg.Repository)
	eng.SetMetrics(rec)

	if lease, _ := config.Duration(cfg.Schedule.LeaseTTL, 0); lease > 0 {
		eng.SetLease(prov, lease)
	}

	if cfg.Events.BusName != "" {
		sinkOpts := []notify.EventBridgeOption{notify.WithSource(cfg.Events.Source)}
		if opts.EventBridge != nil {
			sinkOpts = append(sinkOpts, notify.WithEventBridgeClient(opts.EventBridge))
		}
		sink, err := notify.NewEventBridgeSink(ctx, cfg.Events.BusName, sinkOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating EventBridge sink: %w", err)
		}
		eng.SetEventSink(sink)
	}

	return &Deps{
		Config:    cfg,
		Provider:  prov,
		Engine:    eng,
		Telemetry: tel,
		Logger:    logger,
	}, nil
}

func newProvider(ctx context.Context, cfg *types.Config, logger *slog.Logger) (provider.Provider, error) {
	switch cfg.Store.Backend {
	case types.StoreMemory:
		return memory.New(), nil
	case types.StoreDynamoDB:
		prov, err := dynamodb.New(ctx, &cfg.Store.DynamoDB, cfg.Repository)
		if err != nil {
			return nil, fmt.Errorf("creating DynamoDB provider: %w", err)
		}
		prov.SetLogger(logger)
		if err := prov.Start(ctx); err != nil {
			return nil, fmt.Errorf("starting DynamoDB provider: %w", err)
		}
		return prov, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

func loadAWS(ctx context.Context, cfg *types.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Store.DynamoDB.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Store.DynamoDB.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return awsCfg, nil
}
