package settings

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type Config struct {
	Logger  Logger  `mapstructure:"logger"`
	Queue   Queue   `mapstructure:"queue"`
	Batcher Batcher `mapstructure:"batcher"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"` // empty logs to stderr
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`  // Days
	MaxSize     int    `mapstructure:"max_size"` // Megabytes
	Compress    bool   `mapstructure:"compress"`
}

// Queue is the configuration for a bounded blocking queue
type Queue struct {
	Capacity int `mapstructure:"capacity" validate:"gt=0"`
}

// Batcher is the configuration for queue draining workers
type Batcher struct {
	Workers int `mapstructure:"workers" validate:"gt=0"`
	// Items per Consume call
	BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
	// Zero disables timed flushes
	FlushInterval time.Duration `mapstructure:"flush_interval" validate:"gte=0"`
}

var validate = newValidator()

// newValidator reports fields by their mapstructure key so messages match the config file.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the values that have no usable fallback.
// The first failing field is reported as "<section>.<key> must ...".
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "invalid config")
	}

	fe := fieldErrs[0]
	// Namespace is "Config.<section>.<key>"; drop the root type name.
	_, key, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "gt":
		return errors.Wrapf(err, "%s must be positive, got %v", key, fe.Value())
	case "gte":
		return errors.Wrapf(err, "%s must not be negative, got %v", key, fe.Value())
	default:
		return errors.Wrapf(err, "%s is invalid", key)
	}
}
