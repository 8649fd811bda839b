package types

// Config is the top-level tagwatch configuration.
type Config struct {
	Repository string          `yaml:"repository" json:"repository"`
	GitHub     GitHubConfig    `yaml:"github" json:"github"`
	Webhook    WebhookConfig   `yaml:"webhook" json:"webhook"`
	Store      StoreConfig     `yaml:"store" json:"store"`
	Schedule   ScheduleConfig  `yaml:"schedule" json:"schedule"`
	Events     EventsConfig    `yaml:"events,omitempty" json:"events,omitempty"`
	Server     ServerConfig    `yaml:"server,omitempty" json:"server,omitempty"`
	Telemetry  TelemetryConfig `yaml:"telemetry,omitempty" json:"telemetry,omitempty"`
	LogLevel   string          `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
}

// GitHubConfig configures the upstream release API client.
type GitHubConfig struct {
	APIURL        string `yaml:"apiUrl,omitempty" json:"apiUrl,omitempty"`
	Token         string `yaml:"token,omitempty" json:"-"`
	TokenSecretID string `yaml:"tokenSecretId,omitempty" json:"tokenSecretId,omitempty"`
	Timeout       string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// WebhookConfig configures the downstream deployment webhook.
type WebhookConfig struct {
	URL         string        `yaml:"url,omitempty" json:"-"`
	URLSecretID string        `yaml:"urlSecretId,omitempty" json:"urlSecretId,omitempty"`
	Format      WebhookFormat `yaml:"format,omitempty" json:"format,omitempty"`
	Timeout     string        `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// StoreConfig selects and configures the state store backend.
type StoreConfig struct {
	Backend  StoreBackend   `yaml:"backend,omitempty" json:"backend,omitempty"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb,omitempty" json:"dynamodb,omitempty"`
}

// DynamoDBConfig holds DynamoDB connection and table settings.
type DynamoDBConfig struct {
	TableName    string `yaml:"tableName" json:"tableName"`
	Region       string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	RetentionTTL string `yaml:"retentionTtl,omitempty" json:"retentionTtl,omitempty"`
	CreateTable  bool   `yaml:"createTable,omitempty" json:"createTable,omitempty"`
}

// ScheduleConfig controls the periodic check.
type ScheduleConfig struct {
	Interval string `yaml:"interval,omitempty" json:"interval,omitempty"` // e.g. "1h"
	LeaseTTL string `yaml:"leaseTtl,omitempty" json:"leaseTtl,omitempty"` // empty disables the check lease
}

// EventsConfig configures optional fan-out of trigger events to EventBridge.
type EventsConfig struct {
	BusName string `yaml:"busName,omitempty" json:"busName,omitempty"`
	Source  string `yaml:"source,omitempty" json:"source,omitempty"`
}

// ServerConfig configures the local HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	ServiceName  string `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty" json:"insecure,omitempty"`
}
