package config

import (
	"time"
)

// Config is the global application configuration loaded from config.yml.
type Config struct {
	Codelens   Codelens   `yaml:"codelens"`
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	GitClient  GitClient  `yaml:"git_client"`
	Scan       Scan       `yaml:"scan"`
	ML         ML         `yaml:"ml"`
	Report     Report     `yaml:"report"`
}

// Codelens holds application home folders and the execution mode.
type Codelens struct {
	HomeFolder     string `yaml:"home_folder"`
	ProjectsFolder string `yaml:"projects_folder"`
	ResultsFolder  string `yaml:"results_folder"`
	TempFolder     string `yaml:"temp_folder"`
	Mode           string `yaml:"mode"`
}

// Logger holds logging configuration.
type Logger struct {
	Level string `yaml:"level"`
}

// HTTPClient holds configuration for outbound HTTP clients.
type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

// TLSClientConfig holds TLS verification settings for HTTP clients.
type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

// Proxy holds outbound proxy settings.
type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GitClient holds configuration for repository ingestion over git.
type GitClient struct {
	Depth       int           `yaml:"depth"`
	Timeout     time.Duration `yaml:"timeout"`
	AuthType    string        `yaml:"auth_type"` // "none", "http", "ssh-key"
	SSHKeyPath  string        `yaml:"ssh_key_path"`
	Username    string        `yaml:"username"`
	Token       string        `yaml:"token"`
	InsecureTLS *bool         `yaml:"insecure_tls"`
}

// Scan holds scan engine settings shared by all jobs.
type Scan struct {
	Jobs                int           `yaml:"jobs"`
	Timeout             time.Duration `yaml:"timeout"`
	MaxFileSize         int64         `yaml:"max_file_size"`
	AmbiguousCategories []string      `yaml:"ambiguous_categories"`
	CatalogPath         string        `yaml:"catalog_path"`
}

// ML holds the classification fallback settings. Backend selects between the
// built-in similarity model ("local"), a hosted provider requiring a
// credential ("hosted"), and a self-hosted inference endpoint ("selfhosted").
type ML struct {
	Enabled    *bool      `yaml:"enabled"`
	Backend    string     `yaml:"backend"`
	Threshold  float64    `yaml:"threshold"`
	BatchSize  int        `yaml:"batch_size"`
	Hosted     Hosted     `yaml:"hosted"`
	SelfHosted SelfHosted `yaml:"self_hosted"`
}

// Hosted holds the hosted-provider inference settings.
type Hosted struct {
	BaseURL    string `yaml:"base_url"`
	Credential string `yaml:"credential"`
	Model      string `yaml:"model"`
}

// SelfHosted holds the self-hosted inference endpoint settings.
type SelfHosted struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// Report holds report generation settings.
type Report struct {
	DefaultFormat string `yaml:"default_format"`
}
