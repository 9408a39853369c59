package doctor

import (
	"context"
	stderrors "errors"
	"path/filepath"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
)

// ConfigFileCheck verifies that a config file exists.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		msg, _ := describe(err)
		return fail(c.Name(), "Check the path passed to --config", "%s", msg)
	}
	if path == "" {
		return warn(c.Name(),
			"Run 'emgscope init' to create one, or pass the address as an argument",
			"No %s found, using the defaults", config.ConfigFileName)
	}
	return pass(c.Name(), "Config file: %s", filepath.Base(path))
}

// ConfigSchemaCheck loads the config and runs full validation on it,
// including the protocol grammar and classifier rules.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		msg, _ := describe(err)
		return fail(c.Name(), "Check the YAML syntax in your config file", "%s", msg)
	}
	if err := config.Validate(cfg, config.RequireLink()); err != nil {
		msg, suggestion := describe(err)
		return fail(c.Name(), suggestion, "%s", msg)
	}
	return pass(c.Name(), "Protocol %s with %d channels", cfg.Protocol.Variant, len(cfg.Protocol.Channels))
}

// describe splits an error into a one-line message and its suggestion.
// Validation errors repeat their cause as the message, so the cause is
// left out for those.
func describe(err error) (message, suggestion string) {
	var sErr *errors.Error
	if !stderrors.As(err, &sErr) {
		return errors.Summary(err), ""
	}
	if sErr.Cause != nil && sErr.Cause.Error() == sErr.Message {
		return sErr.Message, sErr.Suggestion
	}
	return sErr.Short(), sErr.Suggestion
}
