package config

import (
	"fmt"
	"math"
	"net"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/monitor"
	"github.com/basturkme/4IER-HMI/internal/protocol"
)

// MaxCapacity caps the per-channel history so a typo can't allocate gigabytes.
const MaxCapacity = 100_000

// ValidationOption controls validation behavior.
type ValidationOption func(*validationContext)

type validationContext struct {
	requireLink bool
}

// RequireLink makes an empty link.address a validation error. Commands that
// never open the link (decode, testvector) validate without it.
func RequireLink() ValidationOption {
	return func(c *validationContext) {
		c.requireLink = true
	}
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config, opts ...ValidationOption) error {
	ctx := &validationContext{}
	for _, opt := range opts {
		opt(ctx)
	}

	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but emgscope only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade emgscope to a newer release.")
	}

	if err := validateLink(cfg.Link, ctx.requireLink); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'link' section in your .emgscope.yaml.")
	}

	if err := validateBuffer(cfg.Buffer); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'buffer' section in your .emgscope.yaml.")
	}

	if err := validateRender(cfg.Render); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'render' section in your .emgscope.yaml.")
	}

	if err := validateProtocol(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			fmt.Sprintf("Check the 'protocol' section, or pick a preset: %s.", strings.Join(PresetNames(), ", ")))
	}

	if err := validateClassifier(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'classifier' section in your .emgscope.yaml.")
	}

	if err := validateMetrics(cfg.Metrics); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Use host:port, like '127.0.0.1:9464'.")
	}

	return nil
}

// validateLink checks link configuration.
func validateLink(link LinkConfig, requireAddress bool) error {
	if requireAddress && strings.TrimSpace(link.Address) == "" {
		return fmt.Errorf("link.address is empty - set it to a serial port like /dev/ttyUSB0 (run 'emgscope ports' to list them)")
	}
	if strings.Contains(link.Address, "${") {
		return fmt.Errorf("link.address has an unexpanded variable: %s", link.Address)
	}
	if link.Baud <= 0 {
		return fmt.Errorf("link.baud needs to be positive (got %d) - the firmware uses 115200", link.Baud)
	}
	if link.ReadTimeout <= 0 {
		return fmt.Errorf("link.read_timeout needs to be positive (got %v) - try '100ms'", link.ReadTimeout)
	}
	if link.ReplayInterval < 0 {
		return fmt.Errorf("link.replay_interval can't be negative - that doesn't make sense")
	}
	return nil
}

// validateBuffer checks the history size.
func validateBuffer(buf BufferConfig) error {
	if buf.Capacity < 1 {
		return fmt.Errorf("buffer.capacity needs to be at least 1 (got %d)", buf.Capacity)
	}
	if buf.Capacity > MaxCapacity {
		return fmt.Errorf("buffer.capacity %d is over the limit of %d", buf.Capacity, MaxCapacity)
	}
	return nil
}

// validateRender checks the refresh interval.
func validateRender(r RenderConfig) error {
	if r.Interval < MinRenderInterval {
		return fmt.Errorf("render.interval %v is too fast - the minimum is %v", r.Interval, MinRenderInterval)
	}
	return nil
}

// validateProtocol checks the channel set and builds a matcher to prove the
// wire grammar compiles.
func validateProtocol(cfg *Config) error {
	p := cfg.Protocol

	if _, err := protocol.ParseVariant(p.Variant); err != nil {
		return fmt.Errorf("protocol.variant '%s' isn't valid - use 'delimited', 'labeled-strict', or 'labeled-loose'", p.Variant)
	}

	if len(p.Channels) == 0 {
		return fmt.Errorf("protocol.channels is empty - list at least one channel or set a preset")
	}

	seen := make(map[string]bool, len(p.Channels))
	for i, ch := range p.Channels {
		if strings.TrimSpace(ch.Name) == "" {
			return fmt.Errorf("protocol.channels[%d] needs a name", i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("protocol.channels has '%s' twice - channel names must be unique", ch.Name)
		}
		seen[ch.Name] = true
	}

	if _, err := protocol.New(cfg.ProtocolSpec()); err != nil {
		return err
	}
	return nil
}

// validateClassifier checks that every rule points at a known channel and state.
func validateClassifier(cfg *Config) error {
	cl := cfg.Classifier

	if math.IsNaN(cl.Threshold) || math.IsInf(cl.Threshold, 0) {
		return fmt.Errorf("classifier.threshold needs to be a finite number")
	}

	if cl.Fallback != "" {
		if _, err := monitor.ParseState(cl.Fallback); err != nil {
			return fmt.Errorf("classifier.fallback: %v", err)
		}
	}

	channels := make(map[string]bool, len(cfg.Protocol.Channels))
	for _, ch := range cfg.Protocol.Channels {
		channels[ch.Name] = true
	}

	for i, rule := range cl.Rules {
		if !channels[rule.Channel] {
			return fmt.Errorf("classifier.rules[%d] uses channel '%s', which isn't in protocol.channels (%s)",
				i, rule.Channel, strings.Join(cfg.ChannelNames(), ", "))
		}
		if _, err := monitor.ParseState(rule.State); err != nil {
			return fmt.Errorf("classifier.rules[%d]: %v", i, err)
		}
	}

	return nil
}

// validateMetrics checks the optional listen address.
func validateMetrics(m MetricsConfig) error {
	if m.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.Addr); err != nil {
		return fmt.Errorf("metrics.addr '%s' isn't a valid listen address", m.Addr)
	}
	return nil
}
