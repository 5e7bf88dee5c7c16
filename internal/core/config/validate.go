package config

import (
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including glob patterns, server settings, and file accessibility. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check). This calls Validate() first for basic
// structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateSurfaces(),
		c.validateServer(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	seen := make(map[string]int, len(c.Surfaces))
	for i, s := range c.Surfaces {
		item := fmt.Sprintf("surfaces[%d]", i)
		if s.Limit == 0 && s.Position == "" {
			warnings = append(warnings, ValidationWarning{
				Category: "Surfaces",
				Item:     item,
				Message:  "surface sets neither limit nor position",
			})
		}
		if first, dup := seen[s.Pattern]; dup {
			warnings = append(warnings, ValidationWarning{
				Category: "Surfaces",
				Item:     item,
				Message:  fmt.Sprintf("pattern %q is shadowed by surfaces[%d]", s.Pattern, first),
			})
			continue
		}
		seen[s.Pattern] = i
	}

	if !c.History.Enabled && (c.History.Retention > 0 || c.History.MaxAge > 0) {
		warnings = append(warnings, ValidationWarning{
			Category: "History",
			Message:  "retention settings have no effect while history is disabled",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validateSurfaces checks surface patterns are valid globs.
func (c *Config) validateSurfaces() error {
	var errs criterio.FieldErrorsBuilder
	for i, s := range c.Surfaces {
		if !doublestar.ValidatePattern(s.Pattern) {
			errs = errs.Append(fmt.Sprintf("surfaces[%d].pattern", i), fmt.Errorf("invalid glob %q", s.Pattern))
		}
	}
	return errs.ToError()
}

// validateServer checks the listen address and CORS origins.
func (c *Config) validateServer() error {
	var errs criterio.FieldErrorsBuilder

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		errs = errs.Append("server.addr", fmt.Errorf("invalid listen address %q: %w", c.Server.Addr, err))
	}

	if c.Server.Gutter < 0 {
		errs = errs.Append("server.gutter", fmt.Errorf("must not be negative"))
	}

	for i, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = errs.Append(fmt.Sprintf("server.allowed_origins[%d]", i), fmt.Errorf("origin %q must be scheme://host[:port] or *", origin))
		}
	}

	return errs.ToError()
}
