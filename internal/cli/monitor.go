package cli

import (
	"context"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/basturkme/4IER-HMI/internal/metrics"
	"github.com/basturkme/4IER-HMI/internal/monitor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// metricsShutdownTimeout bounds how long exit waits for in-flight scrapes.
const metricsShutdownTimeout = 2 * time.Second

// runMonitor loads the config, applies flags and runs a session until the
// user quits, the replay ends (plain mode) or a signal arrives.
func runMonitor(cmd *cobra.Command, args []string, opts *MonitorOptions) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if err := applyMonitorFlags(cfg, *opts, args); err != nil {
		return err
	}
	if err := config.Validate(cfg, config.RequireLink()); err != nil {
		return err
	}

	interactive := !opts.Plain && term.IsTerminal(int(os.Stdout.Fd()))

	restoreLog, err := setupLogging(interactive)
	if err != nil {
		return err
	}
	defer restoreLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return monitorSession(ctx, cfg, *opts, cmd.OutOrStdout(), interactive)
}

// setupLogging points the standard logger somewhere that won't tear the
// dashboard: --log-file if given, nowhere otherwise. Plain mode keeps stderr.
func setupLogging(interactive bool) (func(), error) {
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "emgscope")
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't open log file "+logFile,
				"Check the directory exists and is writable")
		}
		return func() {
			f.Close()
			stdlog.SetOutput(os.Stderr)
		}, nil
	}
	if interactive {
		stdlog.SetOutput(io.Discard)
		return func() { stdlog.SetOutput(os.Stderr) }, nil
	}
	return func() {}, nil
}

// monitorSession wires config into a pipeline and a render loop and runs
// them until done. It returns the link error, if any, once rendering stops.
func monitorSession(ctx context.Context, cfg *config.Config, opts MonitorOptions, out io.Writer, interactive bool) error {
	log := logger.NewEnvLogger("[monitor]")

	popts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}
	popts.Log = logger.NewEnvLogger("[ingest]")

	if opts.Record != "" {
		f, err := os.OpenFile(opts.Record, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't open record file "+opts.Record,
				"Check the directory exists and is writable")
		}
		defer f.Close()
		popts.Record = f
	}

	if cfg.Metrics.Addr != "" {
		collector := metrics.New(cfg.ChannelNames())
		srv, err := metrics.Listen(cfg.Metrics.Addr, collector, logger.NewEnvLogger("[metrics]"))
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Warn("metrics shutdown: %v", err)
			}
		}()
		popts.Observer = collector
	}

	p, err := monitor.NewPipeline(popts)
	if err != nil {
		return err
	}

	view := monitor.ViewOptions{
		Source:   cfg.Link.Address,
		Interval: cfg.Render.Interval,
		Labels:   channelLabels(cfg),
	}

	log.Debug("starting %s session on %s", cfg.Protocol.Variant, cfg.Link.Address)
	p.Start(ctx)
	defer p.Stop()

	if interactive {
		if err := runDashboard(ctx, p, view); err != nil {
			return err
		}
	} else {
		monitor.NewPrinter(p.Store(), p.Classifier(), out, view).Run(ctx, p.Done())
	}

	p.Stop()
	return p.Wait()
}

// runDashboard runs the TUI until the user quits or ctx is cancelled.
// It keeps running after the link goes away so the last data stays visible.
func runDashboard(ctx context.Context, p *monitor.Pipeline, view monitor.ViewOptions) error {
	model := monitor.NewModel(p.Store(), p.Classifier(), view)
	prog := tea.NewProgram(model, tea.WithAltScreen())

	exited := make(chan struct{})
	defer close(exited)
	go func() {
		select {
		case <-ctx.Done():
			prog.Send(monitor.Stop())
		case <-exited:
		}
	}()

	if _, err := prog.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"The dashboard stopped unexpectedly",
			"Try --plain, or check that the terminal supports the alternate screen")
	}
	return nil
}

// pipelineOptions converts the config into pipeline options.
func pipelineOptions(cfg *config.Config) (monitor.Options, error) {
	rules := make([]monitor.Rule, 0, len(cfg.Classifier.Rules))
	for _, r := range cfg.Classifier.Rules {
		state, err := monitor.ParseState(r.State)
		if err != nil {
			return monitor.Options{}, errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid classifier rule for channel "+r.Channel,
				"Check the 'classifier.rules' section in your .emgscope.yaml.")
		}
		rules = append(rules, monitor.Rule{Channel: r.Channel, State: state})
	}

	var fallback monitor.State
	if cfg.Classifier.Fallback != "" {
		var err error
		fallback, err = monitor.ParseState(cfg.Classifier.Fallback)
		if err != nil {
			return monitor.Options{}, errors.WrapWithCode(err, errors.ErrConfig,
				"Invalid classifier fallback",
				"Check 'classifier.fallback' in your .emgscope.yaml.")
		}
	}

	return monitor.Options{
		Link: link.Spec{
			Address:        cfg.Link.Address,
			Baud:           cfg.Link.Baud,
			ReadTimeout:    cfg.Link.ReadTimeout,
			ReplayInterval: cfg.Link.ReplayInterval,
			ReplayLoop:     cfg.Link.ReplayLoop,
		},
		Protocol:  cfg.ProtocolSpec(),
		Capacity:  cfg.Buffer.Capacity,
		Rules:     rules,
		Threshold: cfg.Classifier.Threshold,
		Fallback:  fallback,
	}, nil
}

// channelLabels maps channel names to display labels taken from the wire
// labels, "Rest:" becoming "Rest". Channels without a label keep their name.
func channelLabels(cfg *config.Config) map[string]string {
	labels := make(map[string]string)
	for _, ch := range cfg.Protocol.Channels {
		l := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(ch.Label), ":="))
		if l != "" {
			labels[ch.Name] = l
		}
	}
	return labels
}
