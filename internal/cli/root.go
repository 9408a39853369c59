package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/logger"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
	debug   bool
	logFile string
)

// rootCmd runs the dashboard when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "emgscope [address]",
	Short: "Live plotter for EMG sensor streams",
	Long: `emgscope reads the text lines an EMG sensor board prints over serial,
decodes the channel values, classifies the hand state and plots it all live.

The link is a serial port by default. Capture files, TCP bridges and boards
attached to another machine over SSH work too:

  emgscope /dev/ttyUSB0
  emgscope file://session.log
  emgscope ssh://pi@emgpi/dev/ttyACM0
  emgscope tcp://192.168.4.1:23

Run 'emgscope init' to write a .emgscope.yaml with the port and protocol.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, args, &monitorOpts)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .emgscope.yaml, searched upwards)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&debug, "debug", false, "log debug messages (same as EMGSCOPE_DEBUG=1)")
	pf.StringVar(&logFile, "log-file", "", "append log messages to this file")

	addMonitorFlags(rootCmd, &monitorOpts)
}

// setupGlobals applies the global flags before any command runs.
func setupGlobals(cmd *cobra.Command, args []string) error {
	if noColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	logger.EnableDebug(debug)
	return nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError renders structured errors as-is and plain ones (cobra usage
// errors) with a hint to --help.
func formatError(err error) string {
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if isUsageError(msg) {
		msg += "Run 'emgscope --help' for usage.\n"
	}
	return msg
}

// usagePrefixes start the messages cobra and pflag produce for bad input.
var usagePrefixes = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"accepts ",
	"requires at least",
	"invalid argument",
	"flag needs an argument",
}

func isUsageError(msg string) bool {
	for _, prefix := range usagePrefixes {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
