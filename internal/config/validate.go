package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/nspid/internal/codepage"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the configuration and returns a list of validation errors.
// An empty slice indicates the configuration is valid.
func ValidateConfig(config *Config) []error {
	var errs []error

	errs = append(errs, validateServerConfig(&config.Server)...)
	errs = append(errs, validateDirectoryConfig(&config.Directory)...)
	errs = append(errs, validateStorageConfig(&config.Storage)...)
	errs = append(errs, validateLogConfig(&config.Logging)...)
	errs = append(errs, validateCodepageConfig(&config.Codepages)...)
	errs = append(errs, validateACLConfig(&config.ACL)...)
	errs = append(errs, validateRESTConfig(&config.REST)...)

	return errs
}

func validateServerConfig(config *ServerConfig) []error {
	var errs []error

	if config.GUID != "" {
		if _, err := uuid.Parse(config.GUID); err != nil {
			errs = append(errs, ValidationError{
				Field:   "server.guid",
				Message: err.Error(),
			})
		}
	}

	if config.ShutdownTimeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.shutdownTimeout",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateDirectoryConfig(config *DirectoryConfig) []error {
	var errs []error

	if config.SeedFile == "" {
		errs = append(errs, ValidationError{
			Field:   "directory.seedFile",
			Message: "seed file is required",
		})
	}

	if config.MaxRestrictionDepth < 1 {
		errs = append(errs, ValidationError{
			Field:   "directory.maxRestrictionDepth",
			Message: "must be at least 1",
		})
	}

	if config.MaxExplicitTable < 0 {
		errs = append(errs, ValidationError{
			Field:   "directory.maxExplicitTable",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateStorageConfig(config *StorageConfig) []error {
	var errs []error

	if config.Path != "" && !filepath.IsAbs(config.Path) {
		errs = append(errs, ValidationError{
			Field:   "storage.path",
			Message: "must be an absolute path",
		})
	}

	if config.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.timeout",
			Message: "must be non-negative",
		})
	}

	return errs
}

func validateLogConfig(config *LogConfig) []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if config.Level != "" && !validLevels[strings.ToLower(config.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be debug, info, warn, or error",
		})
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if config.Format != "" && !validFormats[strings.ToLower(config.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be text or json",
		})
	}

	if config.Output != "" && config.Output != "stdout" && config.Output != "stderr" {
		dir := filepath.Dir(config.Output)
		if !filepath.IsAbs(config.Output) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: "must be stdout, stderr, or an absolute file path",
			})
		} else if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}

	return errs
}

func validateCodepageConfig(config *CodepageConfig) []error {
	var errs []error

	for i, cp := range config.Supported {
		if !codepage.IsBuiltin(cp) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("codepages.supported[%d]", i),
				Message: fmt.Sprintf("unknown code page %d", cp),
			})
		}
	}

	return errs
}

func validateACLConfig(config *ACLConfig) []error {
	var errs []error

	validPolicies := map[string]bool{"allow": true, "deny": true}
	if config.DefaultPolicy != "" && !validPolicies[strings.ToLower(config.DefaultPolicy)] {
		errs = append(errs, ValidationError{
			Field:   "acl.defaultPolicy",
			Message: "must be allow or deny",
		})
	}

	validSubjects := map[string]bool{"": true, "*": true, "anonymous": true, "authenticated": true}
	validRights := map[string]bool{"modify": true, "addlink": true, "removelink": true, "all": true}

	for i, rule := range config.Rules {
		if rule.DisplayType == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("acl.rules[%d].displayType", i),
				Message: "display type is required",
			})
		} else if _, ok := nspi.ParseDisplayType(rule.DisplayType); !ok && rule.DisplayType != "*" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("acl.rules[%d].displayType", i),
				Message: fmt.Sprintf("unknown display type: %s", rule.DisplayType),
			})
		}

		if !validSubjects[strings.ToLower(rule.Subject)] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("acl.rules[%d].subject", i),
				Message: "must be *, anonymous, or authenticated",
			})
		}

		for _, name := range rule.Properties {
			if _, ok := nspi.TagByName(name); !ok && name != "*" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("acl.rules[%d].properties", i),
					Message: fmt.Sprintf("unknown property: %s", name),
				})
			}
		}

		if len(rule.Rights) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("acl.rules[%d].rights", i),
				Message: "at least one right is required",
			})
		}
		for _, right := range rule.Rights {
			if !validRights[strings.ToLower(right)] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("acl.rules[%d].rights", i),
					Message: fmt.Sprintf("invalid right: %s", right),
				})
			}
		}
	}

	return errs
}

func validateRESTConfig(config *RESTConfig) []error {
	var errs []error

	if !config.Enabled {
		return nil
	}

	if err := validateAddress(config.Address); err != nil {
		errs = append(errs, ValidationError{
			Field:   "rest.address",
			Message: err.Error(),
		})
	}

	if config.ReadTimeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "rest.readTimeout",
			Message: "must be non-negative",
		})
	}

	if config.WriteTimeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "rest.writeTimeout",
			Message: "must be non-negative",
		})
	}

	if config.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "rest.rateLimit",
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateAddress validates a network address in host:port format.
func validateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %v", err)
	}
	if port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}
