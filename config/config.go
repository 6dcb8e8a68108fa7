/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads the settings a docstore process needs to reach its
// table.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/docstore/pagination"
)

const EnvPrefix = "DOCSTORE_"

// Pagination cache backends.
const (
	CacheMemory   = "memory"
	CacheDynamoDB = "dynamodb"
)

// Config is the process configuration.
type Config struct {
	Region    string `yaml:"region"`
	TableName string `yaml:"tableName"`
	// Endpoint points the client at DynamoDB Local or another compatible
	// service.
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`

	DefaultPageSize int           `yaml:"defaultPageSize"`
	MaxPageSize     int           `yaml:"maxPageSize"`
	TokenTTL        time.Duration `yaml:"tokenTTL"`
	PaginationCache string        `yaml:"paginationCache"`

	SyncTTL time.Duration `yaml:"syncTTL"`

	LogLevel  string `yaml:"logLevel"`
	LogPretty bool   `yaml:"logPretty"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Region:          "us-east-1",
		DefaultPageSize: pagination.DefaultLimit,
		MaxPageSize:     pagination.MaxLimit,
		TokenTTL:        pagination.DefaultTTL,
		PaginationCache: CacheMemory,
		SyncTTL:         30 * 24 * time.Hour,
		LogLevel:        "info",
	}
}

// Load reads the configuration and validates it.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read builds a Config from the defaults, a .env file in the working
// directory, the YAML file at path (skipped when path is "") and finally the
// environment. Later sources win. The result is not validated.
func Read(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays DOCSTORE_* variables. The AWS_* names used by earlier
// deployments are read first so the prefixed ones take precedence.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, names ...string) {
		for _, n := range names {
			if v, ok := lookup(n); ok && v != "" {
				*dst = v
			}
		}
	}
	str(&c.Region, "AWS_REGION", EnvPrefix+"REGION")
	str(&c.TableName, "AWS_DDB_TABLE", EnvPrefix+"TABLE_NAME")
	str(&c.Endpoint, EnvPrefix+"ENDPOINT")
	str(&c.AccessKey, "AWS_ACCESS_KEY", EnvPrefix+"ACCESS_KEY")
	str(&c.SecretKey, "AWS_SECRET_KEY", EnvPrefix+"SECRET_KEY")
	str(&c.PaginationCache, EnvPrefix+"PAGINATION_CACHE")
	str(&c.LogLevel, EnvPrefix+"LOG_LEVEL")

	for name, dst := range map[string]*int{
		EnvPrefix + "DEFAULT_PAGE_SIZE": &c.DefaultPageSize,
		EnvPrefix + "MAX_PAGE_SIZE":     &c.MaxPageSize,
	} {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = n
		}
	}

	for name, dst := range map[string]*time.Duration{
		EnvPrefix + "TOKEN_TTL": &c.TokenTTL,
		EnvPrefix + "SYNC_TTL":  &c.SyncTTL,
	} {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup(EnvPrefix + "LOG_PRETTY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sLOG_PRETTY: %w", EnvPrefix, err)
		}
		c.LogPretty = b
	}
	return nil
}

// Validate clamps the page sizes and checks the required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TableName) == "" {
		return fmt.Errorf("table name is required")
	}
	if c.MaxPageSize < 1 {
		c.MaxPageSize = pagination.MaxLimit
	}
	if c.DefaultPageSize < 1 {
		c.DefaultPageSize = pagination.DefaultLimit
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = pagination.DefaultTTL
	}

	switch c.PaginationCache {
	case "":
		c.PaginationCache = CacheMemory
	case CacheMemory, CacheDynamoDB:
	default:
		return fmt.Errorf("unknown pagination cache %q", c.PaginationCache)
	}
	return nil
}
