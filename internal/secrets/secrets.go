// Package secrets resolves configuration values held in AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, input *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver fetches secret strings by id, memoizing each one for the life of
// the process.
type Resolver struct {
	client SecretsManagerAPI
	cache  map[string]string
}

// NewResolver creates a Resolver backed by client.
func NewResolver(client SecretsManagerAPI) *Resolver {
	return &Resolver{client: client, cache: make(map[string]string)}
}

// NewFromConfig creates a Resolver from an AWS config.
func NewFromConfig(cfg aws.Config) *Resolver {
	return NewResolver(secretsmanager.NewFromConfig(cfg))
}

// Value returns the secret string for id. An id of the form "name#field"
// selects field from a JSON object secret.
func (r *Resolver) Value(ctx context.Context, id string) (string, error) {
	if v, ok := r.cache[id]; ok {
		return v, nil
	}

	name, field, _ := strings.Cut(id, "#")
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("getting secret %q: %w", name, err)
	}
	value := aws.ToString(out.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %q has no string value", name)
	}

	if field != "" {
		var obj map[string]string
		if err := json.Unmarshal([]byte(value), &obj); err != nil {
			return "", fmt.Errorf("secret %q is not a JSON object: %w", name, err)
		}
		v, ok := obj[field]
		if !ok {
			return "", fmt.Errorf("secret %q has no field %q", name, field)
		}
		value = v
	}

	r.cache[id] = value
	return value, nil
}

// Apply fills the GitHub token and webhook URL from their secret ids when
// the plain values are empty.
func (r *Resolver) Apply(ctx context.Context, cfg *types.Config) error {
	if cfg.GitHub.Token == "" && cfg.GitHub.TokenSecretID != "" {
		v, err := r.Value(ctx, cfg.GitHub.TokenSecretID)
		if err != nil {
			return fmt.Errorf("resolving GitHub token: %w", err)
		}
		cfg.GitHub.Token = v
	}
	if cfg.Webhook.URL == "" && cfg.Webhook.URLSecretID != "" {
		v, err := r.Value(ctx, cfg.Webhook.URLSecretID)
		if err != nil {
			return fmt.Errorf("resolving webhook URL: %w", err)
		}
		cfg.Webhook.URL = v
	}
	return nil
}

// Needed reports whether cfg references any secret that Apply would fetch.
func Needed(cfg *types.Config) bool {
	return (cfg.GitHub.Token == "" && cfg.GitHub.TokenSecretID != "") ||
		(cfg.Webhook.URL == "" && cfg.Webhook.URLSecretID != "")
}
