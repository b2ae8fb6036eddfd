// Package config assembles client settings from defaults, an optional JSON
// file, command-line flags and the environment, in that order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds every tunable of the client and the fake API.
type Config struct {
	APIBaseURL          string        `env:"API_BASE_URL" validate:"url"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	FileStoragePath     string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	BoltStoragePath     string        `env:"BOLT_STORAGE_PATH" validate:"filepath"`
	RedisAddr           string        `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"gte=0"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" validate:"gte=0"`
	FakeAPIAddr         string        `env:"FAKE_API_ADDRESS" validate:"hostname_port"`
	FakeAPISigningKey   string        `env:"FAKE_API_SIGNING_KEY"`
	ConfigFile          string        `env:"CONFIG"`
}

// jsonConfig mirrors Config for the JSON file; durations are written as
// strings like "5s".
type jsonConfig struct {
	APIBaseURL          string `json:"api_base_url"`
	LogLevel            string `json:"log_level"`
	FileStoragePath     string `json:"file_storage_path"`
	BoltStoragePath     string `json:"bolt_storage_path"`
	RedisAddr           string `json:"redis_addr"`
	DatabaseDSN         string `json:"database_dsn"`
	DBConnectionTimeout string `json:"db_connection_timeout"`
	RequestTimeout      string `json:"request_timeout"`
	FakeAPIAddr         string `json:"fake_api_address"`
	FakeAPISigningKey   string `json:"fake_api_signing_key"`
}

var defaultConfig = Config{
	APIBaseURL:          "https://frontend-take-home-service.fetch.com",
	LogLevel:            "info",
	DBConnectionTimeout: 10 * time.Second,
	FakeAPIAddr:         ":8081",
	FakeAPISigningKey:   "dogmatch-local-signing-key",
}

const (
	flagAPIBaseURL          = "api"
	flagLogLevel            = "log-level"
	flagFileStoragePath     = "file-storage"
	flagBoltStoragePath     = "bolt-storage"
	flagRedisAddr           = "redis"
	flagDatabaseDSN         = "database-dsn"
	flagDBConnectionTimeout = "db-timeout"
	flagRequestTimeout      = "request-timeout"
	flagFakeAPIAddr         = "fake-api-address"
	flagConfigFile          = "config"
)

// RegisterFlags declares the configuration flags on flagSet. Values are read back
// by New when the same set is passed with WithFlagSet.
func RegisterFlags(flagSet *pflag.FlagSet) {
	flagSet.StringP(flagAPIBaseURL, "a", "", "base URL of the dog adoption service")
	flagSet.StringP(flagLogLevel, "l", "", "logger level")
	flagSet.StringP(flagFileStoragePath, "f", "", "JSON file holding the persisted session and favorites")
	flagSet.String(flagBoltStoragePath, "", "bbolt file holding the persisted session and favorites")
	flagSet.String(flagRedisAddr, "", "Redis host:port holding the persisted session and favorites")
	flagSet.StringP(flagDatabaseDSN, "d", "", "PostgreSQL connection string holding the persisted session and favorites")
	flagSet.Duration(flagDBConnectionTimeout, 0, "timeout for storage connections")
	flagSet.Duration(flagRequestTimeout, 0, "timeout for every call to the service (0 means none)")
	flagSet.String(flagFakeAPIAddr, "", "address the fake service listens on")
	flagSet.StringP(flagConfigFile, "c", "", "JSON configuration file")
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	flagSet    *pflag.FlagSet
	skipDotEnv bool
}

// WithFlagSet makes New apply flags the user set explicitly on flagSet.
func WithFlagSet(flagSet *pflag.FlagSet) InitOption {
	return func(options *initOptions) {
		options.flagSet = flagSet
	}
}

// WithoutDotEnv stops New from loading a .env file.
func WithoutDotEnv() InitOption {
	return func(options *initOptions) {
		options.skipDotEnv = true
	}
}

// New builds the configuration: defaults, then the JSON file, then flags,
// then environment variables.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if !options.skipDotEnv {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Unable to load .env file: %v", err)
		}
	}

	values := Config{}
	applyDefaults(&values, defaultConfig)

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	configFile := valuesFromEnv.ConfigFile
	if options.flagSet != nil && options.flagSet.Changed(flagConfigFile) {
		configFile, _ = options.flagSet.GetString(flagConfigFile)
	}
	if configFile != "" {
		fromJSON, err := loadJSON(configFile)
		if err != nil {
			return nil, err
		}
		overlay(&values, fromJSON)
		values.ConfigFile = configFile
	}

	if options.flagSet != nil {
		fromFlags, err := readFlags(options.flagSet)
		if err != nil {
			return nil, err
		}
		overlay(&values, fromFlags)
	}

	overlay(&values, valuesFromEnv)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}

func applyDefaults(values *Config, defaults Config) {
	overlayOnto(values, defaults, true)
}

// overlay copies every non-zero field of src onto dst.
func overlay(dst *Config, src Config) {
	overlayOnto(dst, src, false)
}

func overlayOnto(dst *Config, src Config, onlyEmpty bool) {
	setString := func(target *string, value string) {
		if value != "" && (!onlyEmpty || *target == "") {
			*target = value
		}
	}
	setDuration := func(target *time.Duration, value time.Duration) {
		if value != 0 && (!onlyEmpty || *target == 0) {
			*target = value
		}
	}

	setString(&dst.APIBaseURL, src.APIBaseURL)
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.FileStoragePath, src.FileStoragePath)
	setString(&dst.BoltStoragePath, src.BoltStoragePath)
	setString(&dst.RedisAddr, src.RedisAddr)
	setString(&dst.DatabaseDSN, src.DatabaseDSN)
	setDuration(&dst.DBConnectionTimeout, src.DBConnectionTimeout)
	setDuration(&dst.RequestTimeout, src.RequestTimeout)
	setString(&dst.FakeAPIAddr, src.FakeAPIAddr)
	setString(&dst.FakeAPISigningKey, src.FakeAPISigningKey)
	setString(&dst.ConfigFile, src.ConfigFile)
}

func loadJSON(fileName string) (Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var raw jsonConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", fileName, err)
	}

	result := Config{
		APIBaseURL:        raw.APIBaseURL,
		LogLevel:          raw.LogLevel,
		FileStoragePath:   raw.FileStoragePath,
		BoltStoragePath:   raw.BoltStoragePath,
		RedisAddr:         raw.RedisAddr,
		DatabaseDSN:       raw.DatabaseDSN,
		FakeAPIAddr:       raw.FakeAPIAddr,
		FakeAPISigningKey: raw.FakeAPISigningKey,
	}

	if result.DBConnectionTimeout, err = parseOptionalDuration(raw.DBConnectionTimeout); err != nil {
		return Config{}, fmt.Errorf("db_connection_timeout: %w", err)
	}
	if result.RequestTimeout, err = parseOptionalDuration(raw.RequestTimeout); err != nil {
		return Config{}, fmt.Errorf("request_timeout: %w", err)
	}

	return result, nil
}

func parseOptionalDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}

	return time.ParseDuration(raw)
}

func readFlags(flagSet *pflag.FlagSet) (Config, error) {
	var result Config

	textFlags := map[string]*string{
		flagAPIBaseURL:      &result.APIBaseURL,
		flagLogLevel:        &result.LogLevel,
		flagFileStoragePath: &result.FileStoragePath,
		flagBoltStoragePath: &result.BoltStoragePath,
		flagRedisAddr:       &result.RedisAddr,
		flagDatabaseDSN:     &result.DatabaseDSN,
		flagFakeAPIAddr:     &result.FakeAPIAddr,
	}
	for name, target := range textFlags {
		if flagSet.Lookup(name) == nil || !flagSet.Changed(name) {
			continue
		}
		value, err := flagSet.GetString(name)
		if err != nil {
			return Config{}, err
		}
		*target = value
	}

	durationFlags := map[string]*time.Duration{
		flagDBConnectionTimeout: &result.DBConnectionTimeout,
		flagRequestTimeout:      &result.RequestTimeout,
	}
	for name, target := range durationFlags {
		if flagSet.Lookup(name) == nil || !flagSet.Changed(name) {
			continue
		}
		value, err := flagSet.GetDuration(name)
		if err != nil {
			return Config{}, err
		}
		*target = value
	}

	return result, nil
}
