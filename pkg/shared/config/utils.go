package config

import (
	"reflect"
	"strings"
)

// GetBoolValue retrieves a boolean value from a nested struct based on a dot-separated path.
// It returns the provided defaultValue if the specified field is not explicitly set or is nil.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	fields := strings.Split(fieldPath, ".")
	val := reflect.ValueOf(config)

	for _, field := range fields {
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}

		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	// Check if the field is a pointer to a bool and is not nil
	if val.Kind() == reflect.Ptr && !val.IsNil() {
		return val.Elem().Bool()
	} else if val.Kind() == reflect.Bool {
		// Handle non-pointer bool directly
		return val.Bool()
	}

	return defaultValue
}

// SetThen provides a utility to select the first value if set, otherwise defaults.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// IsCI reports whether the application runs in CI mode.
func IsCI(cfg *Config) bool {
	return cfg != nil && cfg.Codelens.Mode == "CI"
}

// GetCodelensHome returns the resolved home folder.
func GetCodelensHome(cfg *Config) string {
	return cfg.Codelens.HomeFolder
}

// GetProjectsHome returns the folder where fetched project sources live.
func GetProjectsHome(cfg *Config) string {
	return cfg.Codelens.ProjectsFolder
}

// GetResultsHome returns the folder where analysis artifacts and reports live.
func GetResultsHome(cfg *Config) string {
	return cfg.Codelens.ResultsFolder
}

// GetTempHome returns the folder for unpacked archives and other scratch data.
func GetTempHome(cfg *Config) string {
	return cfg.Codelens.TempFolder
}
