package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/spf13/cobra"
)

// MonitorOptions holds the flags shared by the root and monitor commands.
type MonitorOptions struct {
	Preset      string
	Threshold   string
	Interval    time.Duration
	Plain       bool
	Record      string
	MetricsAddr string
}

// monitorOpts is bound to both the root and monitor flag sets.
var monitorOpts MonitorOptions

// addMonitorFlags registers the monitor flags on cmd.
func addMonitorFlags(cmd *cobra.Command, o *MonitorOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.Preset, "preset", "p", "", "protocol preset ("+strings.Join(config.PresetNames(), ", ")+")")
	f.StringVarP(&o.Threshold, "threshold", "t", "", "classifier threshold, e.g. 0.6")
	f.DurationVar(&o.Interval, "interval", 0, "redraw interval (e.g., 50ms)")
	f.BoolVar(&o.Plain, "plain", false, "print values as text lines instead of the dashboard")
	f.StringVar(&o.Record, "record", "", "append every raw line from the link to this file")
	f.StringVar(&o.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g., 127.0.0.1:9464)")
}

// ParseThreshold parses a classifier threshold flag.
// Returns ok=false if the flag is empty.
func ParseThreshold(flag string) (float64, bool, error) {
	if flag == "" {
		return 0, false, nil
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(flag), 64)
	if err != nil {
		return 0, false, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a threshold", flag),
			"Use a number like 0.6")
	}
	return t, true, nil
}

// applyMonitorFlags layers flag values over the loaded config. A preset flag
// replaces the whole protocol and classifier section with the preset's.
func applyMonitorFlags(cfg *config.Config, o MonitorOptions, args []string) error {
	if len(args) > 0 {
		cfg.Link.Address = args[0]
	}

	if o.Preset != "" {
		cfg.Protocol = config.ProtocolConfig{Preset: o.Preset}
		cfg.Classifier = config.ClassifierConfig{}
		if err := cfg.ApplyPreset(); err != nil {
			return err
		}
	}

	t, ok, err := ParseThreshold(o.Threshold)
	if err != nil {
		return err
	}
	if ok {
		cfg.Classifier.Threshold = t
	}

	if o.Interval != 0 {
		cfg.Render.Interval = o.Interval
	}
	if o.MetricsAddr != "" {
		cfg.Metrics.Addr = o.MetricsAddr
	}
	return nil
}
