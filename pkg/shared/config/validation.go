package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zengent/codelens/pkg/shared/files"
)

// ValidateConfig checks if the global configuration has valid values and
// resolves home folders and defaults in place.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateCodelensConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: codelens directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateGitConfig(&cfg.GitClient); err != nil {
		return fmt.Errorf("YAML global config: git_client directive is invalid: %w", err)
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	if err := ValidateMLConfig(&cfg.ML); err != nil {
		return fmt.Errorf("YAML global config: ml directive is invalid: %w", err)
	}
	return nil
}

// ValidateCodelensConfig resolves and creates the application home folders.
func ValidateCodelensConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("codelens configuration is nil")
	}
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if err := updateFolder(&cfg.Codelens.ProjectsFolder, "CODELENS_PROJECTS_FOLDER", "projects", cfg); err != nil {
		return fmt.Errorf("failed to update projects folder: %w", err)
	}
	if err := updateFolder(&cfg.Codelens.ResultsFolder, "CODELENS_RESULTS_FOLDER", "results", cfg); err != nil {
		return fmt.Errorf("failed to update results folder: %w", err)
	}
	if err := updateFolder(&cfg.Codelens.TempFolder, "CODELENS_TEMP_FOLDER", "tmp", cfg); err != nil {
		return fmt.Errorf("failed to update temp folder: %w", err)
	}
	updateMode(cfg)

	return nil
}

// ValidateGitConfig checks if the git ingestion configuration has valid values.
func ValidateGitConfig(gitConfig *GitClient) error {
	if gitConfig == nil {
		return fmt.Errorf("git configuration is nil")
	}
	if err := validateDuration(gitConfig.Timeout, "timeout", 1*time.Hour); err != nil {
		return err
	}
	switch gitConfig.AuthType {
	case "", "none", "http", "ssh-key":
	default:
		return fmt.Errorf("auth_type must be one of none, http, ssh-key: %q", gitConfig.AuthType)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configuration has valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

// ValidateScanConfig checks the scan engine settings and applies defaults.
func ValidateScanConfig(scanConfig *Scan) error {
	if scanConfig == nil {
		return fmt.Errorf("scan configuration is nil")
	}
	if scanConfig.Jobs < 0 {
		return fmt.Errorf("jobs cannot be negative: %d", scanConfig.Jobs)
	}
	if scanConfig.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size cannot be negative: %d", scanConfig.MaxFileSize)
	}
	if err := validateDuration(scanConfig.Timeout, "timeout", 24*time.Hour); err != nil {
		return err
	}
	scanConfig.Jobs = SetThen(scanConfig.Jobs, DefaultScanJobs)
	scanConfig.Timeout = SetThen(scanConfig.Timeout, DefaultScanTimeout)
	scanConfig.MaxFileSize = SetThen(scanConfig.MaxFileSize, int64(DefaultMaxFileSize))
	if len(scanConfig.AmbiguousCategories) == 0 {
		scanConfig.AmbiguousCategories = DefaultAmbiguousCategories()
	}
	return nil
}

// ValidateMLConfig checks the classification fallback settings and applies defaults.
func ValidateMLConfig(mlConfig *ML) error {
	if mlConfig == nil {
		return fmt.Errorf("ml configuration is nil")
	}
	switch mlConfig.Backend {
	case "", "local", "hosted", "selfhosted":
	default:
		return fmt.Errorf("backend must be one of local, hosted, selfhosted: %q", mlConfig.Backend)
	}
	if mlConfig.Threshold < 0 || mlConfig.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1: %v", mlConfig.Threshold)
	}
	if mlConfig.Backend == "hosted" && mlConfig.Hosted.Credential == "" && os.Getenv("CODELENS_ML_CREDENTIAL") == "" {
		return fmt.Errorf("hosted backend requires a credential (ml.hosted.credential or CODELENS_ML_CREDENTIAL)")
	}
	if mlConfig.Backend == "selfhosted" && mlConfig.SelfHosted.Host == "" {
		return fmt.Errorf("selfhosted backend requires ml.self_hosted.host")
	}
	mlConfig.Backend = SetThen(mlConfig.Backend, "local")
	mlConfig.Threshold = SetThen(mlConfig.Threshold, DefaultMLThreshold)
	mlConfig.BatchSize = SetThen(mlConfig.BatchSize, DefaultMLBatchSize)
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	if err := validatePort(proxy.Port); err != nil {
		return err
	}

	return nil
}

// validateHost checks if the host part of the proxy configuration is valid.
// It ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	_, err := url.Parse(*host)
	if err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// updateHome updates the HomeFolder from environment variables or sets a default value.
func updateHome(cfg *Config) error {
	if homeFolder := os.Getenv("CODELENS_HOME"); homeFolder != "" {
		cfg.Codelens.HomeFolder = homeFolder
	} else if cfg.Codelens.HomeFolder == "" {
		homeFolder, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to get user home folder: %w", err)
		}
		cfg.Codelens.HomeFolder = filepath.Join(homeFolder, ".codelens")
	}

	expandedHomePath, err := files.ExpandPath(cfg.Codelens.HomeFolder)
	if err != nil {
		return fmt.Errorf("failed to expand new home path %q: %w", cfg.Codelens.HomeFolder, err)
	}
	cfg.Codelens.HomeFolder = expandedHomePath

	if err := files.CreateFolderIfNotExists(expandedHomePath); err != nil {
		return fmt.Errorf("failed to create home folder %q: %w", cfg.Codelens.HomeFolder, err)
	}
	return nil
}

// updateFolder updates a folder path in the application configuration.
func updateFolder(folder *string, envVar, defaultSubFolder string, cfg *Config) error {
	if envVarValue := os.Getenv(envVar); envVarValue != "" {
		*folder = envVarValue
	} else if *folder == "" {
		*folder = filepath.Join(GetCodelensHome(cfg), defaultSubFolder)
	}

	expandedHomePath, err := files.ExpandPath(*folder)
	if err != nil {
		return fmt.Errorf("failed to expand new home path %q: %w", *folder, err)
	}
	*folder = expandedHomePath

	if err := files.CreateFolderIfNotExists(expandedHomePath); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", expandedHomePath, err)
	}
	return nil
}

// updateMode updates the Mode field based on environment variables.
func updateMode(cfg *Config) {
	if os.Getenv("CODELENS_MODE") == "CI" || os.Getenv("CI") == "true" {
		cfg.Codelens.Mode = "CI"
		return
	}

	if envVarValue := os.Getenv("CODELENS_MODE"); envVarValue != "" {
		cfg.Codelens.Mode = envVarValue
		return
	}

	cfg.Codelens.Mode = "user"
}
