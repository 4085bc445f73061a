package config

import (
	"io/fs"
	"os"
	"strings"

	"codeberg.org/mutker/producflow/internal/cache"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/httpapi"
	"codeberg.org/mutker/producflow/internal/metrics"
	"codeberg.org/mutker/producflow/internal/store"
	"codeberg.org/mutker/producflow/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel  = LogLevelInfo
	DefaultLogFormat = LogFormatConsole

	defaultEnvPrefix  = "PRODUCFLOW"
	defaultDotenv     = ".env"
	defaultConfigName = "producflow"
	systemConfigDir   = "/etc/producflow"
)

type Config struct {
	LogLevel  LogLevel
	LogFormat LogFormat
	PIDFile   string

	Server    httpapi.Config
	Database  store.Config
	Metrics   metrics.Config
	Cache     cache.Config
	Telemetry telemetry.Config
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"log-format":  "log_format",
	"pid-file":    "pid_file",
	"addr":        "server.addr",
	"db-driver":   "database.driver",
	"db-dsn":      "database.dsn",
	"seed":        "database.seed",
	"simulate":    "telemetry.simulate",
	"redis-addr":  "cache.redis_addr",
	"mqtt-broker": "telemetry.mqtt.broker",
}

// Load reads configuration from, lowest precedence first: built-in
// defaults, a TOML file, PRODUCFLOW_* environment variables (optionally
// seeded from a .env file) and command-line flags in args.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{
		envPrefix:  defaultEnvPrefix,
		dotenvPath: defaultDotenv,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(ErrInvalidConfig, err)
		}
	}

	if err := godotenv.Load(o.dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errFactory.Wrap(ErrLoadDotenv, err)
	}

	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(ErrParseFlags, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := o.configPath
	if env := os.Getenv(o.envPrefix + "_CONFIG"); env != "" {
		configPath = env
	}
	if f := flags.Lookup("config"); f.Changed {
		configPath = f.Value.String()
	}
	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(ErrBindFlags, err)
		}
	}

	cfg := build(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("producflow", pflag.ContinueOnError)
	flags.String("config", "", "Path to a TOML configuration file")
	flags.String("log-level", string(DefaultLogLevel), "Log level (debug, info, warning, error)")
	flags.String("log-format", string(DefaultLogFormat), "Log format (console, json)")
	flags.String("pid-file", "", "Write the process id to this file")
	flags.String("addr", httpapi.DefaultConfig().Addr, "HTTP listen address")
	flags.String("db-driver", store.DefaultConfig().Driver, "Database driver (sqlite3, postgres)")
	flags.String("db-dsn", store.DefaultConfig().DSN, "Database path or connection string")
	flags.Bool("seed", false, "Insert sample data into an empty database")
	flags.Bool("simulate", false, "Generate synthetic sensor readings")
	flags.String("redis-addr", "", "Redis address for the report cache")
	flags.String("mqtt-broker", "", "MQTT broker URL for sensor ingestion")
	return flags
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(defaultConfigName)
	v.AddConfigPath(systemConfigDir)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errFactory.Wrap(ErrReadConfig, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("log_format", string(DefaultLogFormat))
	v.SetDefault("pid_file", "")

	server := httpapi.DefaultConfig()
	v.SetDefault("server.addr", server.Addr)
	v.SetDefault("server.cors_origins", server.CORSOrigins)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	db := store.DefaultConfig()
	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.dsn", db.DSN)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.backup_dir", db.BackupDir)
	v.SetDefault("database.seed", db.Seed)

	m := metrics.DefaultConfig()
	v.SetDefault("metrics.window_days", m.WindowDays)
	v.SetDefault("metrics.efficiency_source", string(m.EfficiencySource))
	v.SetDefault("metrics.production_efficiency", m.ProductionEfficiency)
	v.SetDefault("metrics.cost_savings", m.CostSavings)

	c := cache.DefaultConfig()
	v.SetDefault("cache.redis_addr", c.RedisAddr)
	v.SetDefault("cache.redis_password", c.RedisPassword)
	v.SetDefault("cache.redis_db", c.RedisDB)
	v.SetDefault("cache.ttl", c.TTL)

	t := telemetry.DefaultConfig()
	v.SetDefault("telemetry.simulate", t.Simulate)
	v.SetDefault("telemetry.interval", t.Interval)
	v.SetDefault("telemetry.mqtt.broker", t.MQTT.Broker)
	v.SetDefault("telemetry.mqtt.client_id", t.MQTT.ClientID)
	v.SetDefault("telemetry.mqtt.username", t.MQTT.Username)
	v.SetDefault("telemetry.mqtt.password", t.MQTT.Password)
	v.SetDefault("telemetry.mqtt.topic", t.MQTT.Topic)
	v.SetDefault("telemetry.mqtt.qos", t.MQTT.QoS)
}

func build(v *viper.Viper) *Config {
	return &Config{
		LogLevel:  LogLevel(strings.ToLower(v.GetString("log_level"))),
		LogFormat: LogFormat(strings.ToLower(v.GetString("log_format"))),
		PIDFile:   v.GetString("pid_file"),
		Server: httpapi.Config{
			Addr:            v.GetString("server.addr"),
			CORSOrigins:     v.GetStringSlice("server.cors_origins"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: store.Config{
			Driver:       v.GetString("database.driver"),
			DSN:          v.GetString("database.dsn"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			BackupDir:    v.GetString("database.backup_dir"),
			Seed:         v.GetBool("database.seed"),
		},
		Metrics: metrics.Config{
			WindowDays:           v.GetInt("metrics.window_days"),
			EfficiencySource:     metrics.EfficiencySource(v.GetString("metrics.efficiency_source")),
			ProductionEfficiency: v.GetFloat64("metrics.production_efficiency"),
			CostSavings:          v.GetFloat64("metrics.cost_savings"),
		},
		Cache: cache.Config{
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
			TTL:           v.GetDuration("cache.ttl"),
		},
		Telemetry: telemetry.Config{
			Simulate: v.GetBool("telemetry.simulate"),
			Interval: v.GetDuration("telemetry.interval"),
			MQTT: telemetry.MQTTConfig{
				Broker:   v.GetString("telemetry.mqtt.broker"),
				ClientID: v.GetString("telemetry.mqtt.client_id"),
				Username: v.GetString("telemetry.mqtt.username"),
				Password: v.GetString("telemetry.mqtt.password"),
				Topic:    v.GetString("telemetry.mqtt.topic"),
				QoS:      v.GetInt("telemetry.mqtt.qos"),
			},
		},
	}
}

// Validate checks every section, reporting the first invalid value.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !c.LogLevel.IsValid() {
		return errFactory.WithData(ErrInvalidLogLevel, c.LogLevel)
	}
	if !c.LogFormat.IsValid() {
		return errFactory.WithData(ErrInvalidLogFormat, c.LogFormat)
	}

	sections := []struct {
		name     string
		validate func() error
	}{
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"metrics", c.Metrics.Validate},
		{"cache", c.Cache.Validate},
		{"telemetry", c.Telemetry.Validate},
	}
	for _, s := range sections {
		if err := s.validate(); err != nil {
			return errFactory.Wrap(ErrInvalidConfig, err).WithMessage("invalid " + s.name + " configuration")
		}
	}

	return nil
}
