package settings

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BLOCKQ_QUEUE_CAPACITY.
const EnvPrefix = "BLOCKQ"

const (
	DefaultCapacity  = 1024
	DefaultWorkers   = 1
	DefaultBatchSize = 64
	DefaultLogLevel  = "info"
)

// Load reads the config file at path, applies environment overrides and
// defaults, and validates the result. An empty path uses defaults and env only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", DefaultLogLevel)
	v.SetDefault("logger.file_log_name", "")
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.compress", false)
	v.SetDefault("queue.capacity", DefaultCapacity)
	v.SetDefault("batcher.workers", DefaultWorkers)
	v.SetDefault("batcher.batch_size", DefaultBatchSize)
	v.SetDefault("batcher.flush_interval", "0s")
}
