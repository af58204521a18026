package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	TransportKafka = "kafka"
	TransportSQS   = "sqs"
)

// Config is read from defaults, an optional .env file and the environment.
// Nested keys map to env names with "_", e.g. postgres.host -> POSTGRES_HOST.
type Config struct {
	ServiceName string `mapstructure:"service_name" validate:"required"`
	Env         string `mapstructure:"env" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,gt=0"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname" validate:"required"`
	SSLMode  string `mapstructure:"sslmode" validate:"required"`
}

// DSN returns a lib/pq keyword/value connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type MessagingConfig struct {
	Transport string       `mapstructure:"transport" validate:"oneof=kafka sqs"`
	Topics    TopicsConfig `mapstructure:"topics"`
	Retry     RetryConfig  `mapstructure:"retry"`
}

type TopicsConfig struct {
	PaymentRequest             string `mapstructure:"payment_request" validate:"required"`
	PaymentResponse            string `mapstructure:"payment_response" validate:"required"`
	RestaurantApprovalRequest  string `mapstructure:"restaurant_approval_request" validate:"required"`
	RestaurantApprovalResponse string `mapstructure:"restaurant_approval_response" validate:"required"`
}

type RetryConfig struct {
	MaxRetries      uint64        `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval" validate:"gt=0"`
	MaxInterval     time.Duration `mapstructure:"max_interval" validate:"gtefield=InitialInterval"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	GroupID      string        `mapstructure:"group_id"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	SleepAfterError time.Duration `mapstructure:"sleep_after_error" validate:"gte=0"`
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`

	PaymentRequestTopicARN            string `mapstructure:"payment_request_topic_arn"`
	RestaurantApprovalRequestTopicARN string `mapstructure:"restaurant_approval_request_topic_arn"`

	QueueURL          string `mapstructure:"queue_url"`
	WaitTimeSeconds   int32  `mapstructure:"wait_time_seconds" validate:"gte=0,lte=20"`
	VisibilityTimeout int32  `mapstructure:"visibility_timeout" validate:"gte=0"`
}

type OutboxConfig struct {
	Schedule    string        `mapstructure:"schedule" validate:"required"`
	BatchSize   int           `mapstructure:"batch_size" validate:"gt=0"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gt=0"`
	Lease       time.Duration `mapstructure:"lease" validate:"gt=0"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// SlogLevel converts LogLevel for slog.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// LoadConfig reads the configuration. Missing env files are ignored.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and the settings the chosen transport needs.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var errs []error
	switch c.Messaging.Transport {
	case TransportKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka.brokers is required for the kafka transport"))
		}
		if c.Kafka.GroupID == "" {
			errs = append(errs, errors.New("kafka.group_id is required for the kafka transport"))
		}
	case TransportSQS:
		if c.AWS.Region == "" {
			errs = append(errs, errors.New("aws.region is required for the sqs transport"))
		}
		if c.AWS.QueueURL == "" {
			errs = append(errs, errors.New("aws.queue_url is required for the sqs transport"))
		}
		if c.AWS.PaymentRequestTopicARN == "" || c.AWS.RestaurantApprovalRequestTopicARN == "" {
			errs = append(errs, errors.New("aws topic arns are required for the sqs transport"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "order-service")
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "info")

	v.SetDefault("http.port", "8181")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "orders")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("messaging.transport", TransportKafka)
	v.SetDefault("messaging.topics.payment_request", "payment-request")
	v.SetDefault("messaging.topics.payment_response", "payment-response")
	v.SetDefault("messaging.topics.restaurant_approval_request", "restaurant-approval-request")
	v.SetDefault("messaging.topics.restaurant_approval_response", "restaurant-approval-response")
	v.SetDefault("messaging.retry.max_retries", 3)
	v.SetDefault("messaging.retry.initial_interval", 200*time.Millisecond)
	v.SetDefault("messaging.retry.max_interval", 2*time.Second)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "order-service")
	v.SetDefault("kafka.max_wait", time.Second)
	v.SetDefault("kafka.batch_timeout", 10*time.Millisecond)
	v.SetDefault("kafka.write_timeout", 10*time.Second)
	v.SetDefault("kafka.sleep_after_error", 5*time.Second)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.payment_request_topic_arn", "")
	v.SetDefault("aws.restaurant_approval_request_topic_arn", "")
	v.SetDefault("aws.queue_url", "")
	v.SetDefault("aws.wait_time_seconds", 20)
	v.SetDefault("aws.visibility_timeout", 30)

	v.SetDefault("outbox.schedule", "@every 5s")
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.max_attempts", 10)
	v.SetDefault("outbox.lease", time.Minute)

	v.SetDefault("telemetry.otlp_endpoint", "")
}
