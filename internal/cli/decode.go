package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/monitor"
	"github.com/basturkme/4IER-HMI/internal/protocol"
	"github.com/basturkme/4IER-HMI/internal/ui"
	"github.com/spf13/cobra"
)

// decodeReadTimeout is generous: files never stall, a slow pipe might.
const decodeReadTimeout = time.Second

// DecodeStats counts what a decode run saw.
type DecodeStats struct {
	Lines   int
	Decoded int
	Skipped int
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if decodePresetFlag != "" {
		if err := applyMonitorFlags(cfg, MonitorOptions{Preset: decodePresetFlag}, nil); err != nil {
			return err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	name := "stdin"
	var in io.ReadCloser = io.NopCloser(cmd.InOrStdin())
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrLink,
				"Couldn't open "+args[0],
				"Check the path, or pipe the capture in on stdin")
		}
		in = f
		name = args[0]
	}

	stats, err := decode(cmd.Context(), link.NewReader(name, in, decodeReadTimeout), cfg, cmd.OutOrStdout(), decodeAllFlag)
	if err != nil {
		return err
	}

	summary := cmd.ErrOrStderr()
	if stats.Decoded == 0 && stats.Lines > 0 {
		ui.Warn(summary, "None of %d lines matched the %s protocol", stats.Lines, cfg.Protocol.Variant)
		ui.Hint(summary, "Try another --preset: %s", strings.Join(config.PresetNames(), ", "))
		return nil
	}
	ui.Success(summary, "%d decoded, %d skipped", stats.Decoded, stats.Skipped)
	return nil
}

// decode matches every line from src and prints the values, followed by the
// classification when the config has rules. With all, non-data lines are
// echoed behind a '#'.
func decode(ctx context.Context, src link.Source, cfg *config.Config, out io.Writer, all bool) (DecodeStats, error) {
	defer src.Close()

	var stats DecodeStats

	matcher, err := protocol.New(cfg.ProtocolSpec())
	if err != nil {
		return stats, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid protocol", "Check the protocol section of .emgscope.yaml")
	}
	popts, err := pipelineOptions(cfg)
	if err != nil {
		return stats, err
	}
	store := monitor.NewStore(matcher.Channels(), 1)
	classifier := monitor.NewClassifier(popts.Rules, popts.Threshold, popts.Fallback)

	for {
		line, ok, err := src.Next(ctx)
		if err != nil {
			if stderrors.Is(err, link.ErrEndOfStream) || ctx.Err() != nil {
				return stats, nil
			}
			return stats, err
		}
		if !ok {
			continue
		}
		stats.Lines++

		values, matched := matcher.Match(line)
		if !matched {
			stats.Skipped++
			if all {
				fmt.Fprintln(out, ui.Muted("# "+line))
			}
			continue
		}
		stats.Decoded++

		store.AppendAll(values)
		fields := make([]string, len(values))
		for i, v := range values {
			fields[i] = v.Channel + "=" + strconv.FormatFloat(v.Value, 'f', -1, 64)
		}
		text := strings.Join(fields, " ")
		if classifier.Enabled() {
			text += " | " + classifier.Classify(store.Latest).State.String()
		}
		fmt.Fprintln(out, text)
	}
}
