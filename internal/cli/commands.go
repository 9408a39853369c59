package cli

import (
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	decodeAllFlag    bool
	decodePresetFlag string
	portsUseFlag     string
	initOpts         InitOptions
	testvectorOpts   TestvectorOptions
	doctorJSON       bool
)

// monitorCmd starts the live dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor [address]",
	Short: "Plot the sensor stream live",
	Long: `Open the link, decode every line and plot each channel with the current
hand state. This is what plain 'emgscope' runs.

The address overrides link.address from the config:
  /dev/ttyUSB0, COM3              serial port
  tcp://host:port                 raw TCP (ser2net, ESP32 bridge)
  ssh://[user@]host[:port]/dev/x  serial port on another machine
  file://capture.log              replay a recording
  -                               read stdin

Keyboard shortcuts:
  q / Ctrl+C  Quit
  Space       Freeze / resume the plot
  ?           Show help

When stdout is not a terminal, or with --plain, one text line is printed per
update instead.

Examples:
  emgscope monitor /dev/ttyACM0
  emgscope monitor --preset B file://session.log
  emgscope monitor --plain --record session.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, args, &monitorOpts)
	},
}

// decodeCmd runs the matcher over a capture
var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode captured lines with the configured protocol",
	Long: `Run the protocol matcher over a capture file (or stdin) and print what
each line decodes to. Handy for checking a preset against real firmware output.

Examples:
  emgscope decode session.log
  emgscope decode --preset A --all session.log
  cat /dev/ttyUSB0 | emgscope decode`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(cmd, args)
	},
}

// portsCmd lists serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long: `List the serial ports on this machine, with USB details where available.
The port the config points at is marked.

Examples:
  emgscope ports
  emgscope ports --use /dev/ttyACM0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsCommand(cmd.OutOrStdout(), portsUseFlag)
	},
}

// initCmd creates a new .emgscope.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .emgscope.yaml configuration",
	Long: `Create a .emgscope.yaml in the current directory.

Asks for the link address, the firmware's output format and the classifier
threshold. Without a terminal, or with --non-interactive, the flags are used.

Examples:
  emgscope init
  emgscope init --address /dev/ttyUSB0 --preset D --non-interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd, initOpts)
	},
}

// testvectorCmd writes the firmware test header
var testvectorCmd = &cobra.Command{
	Use:   "testvector <dataset.csv>",
	Short: "Generate test_vectors.h from a recorded dataset",
	Long: `Build a rest/movement test scenario from a recorded EMG dataset and
write it as a C header for the firmware's self-test.

The dataset is a CSV with a header row: EMG columns, then a label column
(restimulus or stimulus). The scenario is rest, movement, rest, movement,
--segment rows each. Output is byte-identical for identical input.

Examples:
  emgscope testvector S1_A1_E1.csv
  emgscope testvector --channels 10 --window 50 --labels -o src/test_vectors.h data.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return testvectorCommand(cmd, args[0], testvectorOpts)
	},
}

// doctorCmd checks the setup end to end
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, link and metrics setup",
	Long: `Run diagnostic checks: the config loads and validates, the link address
parses and can be reached, and the metrics port is free.

Serial ports are looked up, not opened, so the board is not reset.

Examples:
  emgscope doctor
  emgscope doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), doctorJSON)
	},
}

func init() {
	addMonitorFlags(monitorCmd, &monitorOpts)

	// decode command flags
	decodeCmd.Flags().BoolVarP(&decodeAllFlag, "all", "a", false, "also print lines that are not data")
	decodeCmd.Flags().StringVarP(&decodePresetFlag, "preset", "p", "", "protocol preset to decode with")

	// ports command flags
	portsCmd.Flags().StringVar(&portsUseFlag, "use", "", "write this port to link.address in the config")

	// init command flags
	initCmd.Flags().StringVar(&initOpts.Address, "address", "", "link address (serial port, tcp://, ssh://, file://)")
	initCmd.Flags().StringVarP(&initOpts.Preset, "preset", "p", "", "protocol preset")
	initCmd.Flags().StringVarP(&initOpts.Threshold, "threshold", "t", "", "classifier threshold")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt, use flags and defaults")

	// testvector command flags
	addTestvectorFlags(testvectorCmd, &testvectorOpts)

	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(testvectorCmd)
	rootCmd.AddCommand(doctorCmd)
}
