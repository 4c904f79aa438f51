package microservices

import (
	"errors"
	"flag"
	"io/fs"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
	"github.com/peterhellberg/duration"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "QUIZZBUZZ"

// ServiceConfig holds the configuration for a service
type ServiceConfig struct {
	Port   string       `mapstructure:"port"`
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	CORS   CORSPolicy   `mapstructure:"cors"`
}

// StoreConfig describes the document store the service connects to.
type StoreConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	AppName        string        `mapstructure:"app_name"`
	ConnectTimeout time.Duration `mapstructure:"-"` // parsed from ISO-8601 store.connect_timeout
}

type ServerConfig struct {
	ShutdownTimeout time.Duration `mapstructure:"-"` // parsed from ISO-8601 server.shutdown_timeout
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")

	v.SetDefault("store.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("store.database", "quizzbuzz")
	v.SetDefault("store.collection", "quizzes")
	v.SetDefault("store.app_name", "quizzbuzz")
	v.SetDefault("store.connect_timeout", "PT10S")

	v.SetDefault("server.shutdown_timeout", "PT5S")

	v.SetDefault("cors.allowed_origins", DefaultCORSPolicy.AllowedOrigins)
	v.SetDefault("cors.allowed_methods", DefaultCORSPolicy.AllowedMethods)
	v.SetDefault("cors.allowed_headers", DefaultCORSPolicy.AllowedHeaders)
}

// LoadServiceConfig reads an optional .env file, the optional YAML file at configFile
// and QUIZZBUZZ_* environment variables, in increasing order of precedence.
func LoadServiceConfig(configFile string) (*ServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, pkgerrors.Wrap(err, "error loading .env file")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("port", envPrefix+"_PORT", "PORT")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, pkgerrors.Wrapf(err, "error loading config file %s", configFile)
		}
	}

	var cfg ServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, pkgerrors.Wrap(err, "error unmarshalling config")
	}

	var err error
	cfg.Store.ConnectTimeout, err = parseDuration(v, "store.connect_timeout")
	if err != nil {
		return nil, err
	}
	cfg.Server.ShutdownTimeout, err = parseDuration(v, "server.shutdown_timeout")
	if err != nil {
		return nil, err
	}

	if cfg.Port == "" {
		return nil, errors.New("port must not be empty")
	}
	if cfg.Store.URI == "" || cfg.Store.Database == "" || cfg.Store.Collection == "" {
		return nil, errors.New("store uri, database and collection must be set")
	}

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := duration.Parse(raw)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "%s: invalid ISO-8601 duration %q", key, raw)
	}
	if d <= 0 {
		return 0, pkgerrors.Errorf("%s: duration must be positive, got %q", key, raw)
	}
	return d, nil
}

// BuildServiceConfig declares the flags and parses them, then returns a ServiceConfig struct.
func BuildServiceConfig() *ServiceConfig {
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to an optional YAML config file")

	flag.Parse()

	cfg, err := LoadServiceConfig(configFile)
	if err != nil {
		glog.Fatalf("error building service config: %v", err)
	}

	return cfg
}
