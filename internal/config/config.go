// Package config provides unified configuration for the extraction
// pipeline: warehouse connection parameters, staging-store settings,
// and type-mapping flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all recognized options.
type Config struct {
	// Host is the hostname of the Redshift cluster
	Host string `json:"host" yaml:"host"`

	// Port is the port of the Redshift cluster
	Port int `json:"port" yaml:"port"`

	// Database is the name of the Redshift database
	Database string `json:"database" yaml:"database"`

	// Schemas lists the database schemas to extract tables from
	Schemas []string `json:"schemas" yaml:"schemas"`

	// UseIAMAuthentication selects short-lived federated cluster
	// credentials over static username/password
	UseIAMAuthentication bool `json:"use_iam_authentication" yaml:"use_iam_authentication"`

	// Username for database authentication (the DbUser when IAM
	// authentication is enabled)
	Username string `json:"username" yaml:"username"`

	// Password for database authentication (unused with IAM)
	Password string `json:"password" yaml:"password"`

	// ClusterIdentifier names the provisioned cluster; required for IAM
	// authentication
	ClusterIdentifier string `json:"cluster_identifier" yaml:"cluster_identifier"`

	// AWSRegion is the AWS region of the cluster and staging bucket
	AWSRegion string `json:"aws_region" yaml:"aws_region"`

	// SSL controls whether the connection uses TLS
	SSL bool `json:"ssl" yaml:"ssl"`

	// SSLMode is the TLS mode (require, prefer, allow, disable)
	SSLMode string `json:"sslmode" yaml:"sslmode"`

	// S3Bucket is the staging bucket for UNLOAD operations
	S3Bucket string `json:"s3_bucket" yaml:"s3_bucket"`

	// S3KeyPrefix is the staging key prefix for UNLOAD operations
	S3KeyPrefix string `json:"s3_key_prefix" yaml:"s3_key_prefix"`

	// S3Endpoint is an optional custom endpoint (MinIO, LocalStack)
	S3Endpoint string `json:"s3_endpoint" yaml:"s3_endpoint"`

	// S3UsePathStyle enables path-style addressing (required for MinIO)
	S3UsePathStyle bool `json:"s3_use_path_style" yaml:"s3_use_path_style"`

	// CopyRoleARN is the IAM role the warehouse assumes to write the
	// unloaded files to the staging bucket
	CopyRoleARN string `json:"copy_role_arn" yaml:"copy_role_arn"`

	// DatesAsString maps date/time columns to plain strings instead of
	// format-tagged schema types
	DatesAsString bool `json:"dates_as_string" yaml:"dates_as_string"`

	// SuperAsObject maps SUPER columns to open objects instead of strings
	SuperAsObject bool `json:"super_as_object" yaml:"super_as_object"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:        5439,
		AWSRegion:   "eu-west-1",
		SSL:         true,
		SSLMode:     "require",
		S3KeyPrefix: "redshift-unload",
		CopyRoleARN: "DEFAULT",
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("s3_bucket is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.UseIAMAuthentication {
		if c.ClusterIdentifier == "" {
			return fmt.Errorf("cluster_identifier is required with use_iam_authentication")
		}
		if c.Username == "" {
			return fmt.Errorf("username is required with use_iam_authentication")
		}
	} else if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password are required without use_iam_authentication")
	}

	switch c.SSLMode {
	case "require", "prefer", "allow", "disable":
	default:
		return fmt.Errorf("invalid sslmode: %s (must be require, prefer, allow, or disable)", c.SSLMode)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file, selected
// by extension, over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv overlays environment variables onto the configuration.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("REDSHIFT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("REDSHIFT_PORT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Port)
	}
	if v := os.Getenv("REDSHIFT_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("REDSHIFT_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("REDSHIFT_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("REDSHIFT_CLUSTER_IDENTIFIER"); v != "" {
		cfg.ClusterIdentifier = v
	}
	if v := os.Getenv("REDSHIFT_USE_IAM_AUTHENTICATION"); v != "" {
		cfg.UseIAMAuthentication = v == "true" || v == "1"
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWSRegion = v
	}
	if v := os.Getenv("REDSHIFT_S3_BUCKET"); v != "" {
		cfg.S3Bucket = v
	}
	if v := os.Getenv("REDSHIFT_S3_KEY_PREFIX"); v != "" {
		cfg.S3KeyPrefix = v
	}
	if v := os.Getenv("REDSHIFT_COPY_ROLE_ARN"); v != "" {
		cfg.CopyRoleARN = v
	}
}
