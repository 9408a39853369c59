package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/errors"
	"github.com/basturkme/4IER-HMI/internal/link"
	"github.com/basturkme/4IER-HMI/internal/ui"
	"github.com/basturkme/4IER-HMI/pkg/sshutil"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Address        string // Pre-specified link address
	Preset         string // Pre-specified protocol preset
	Threshold      string // Pre-specified classifier threshold
	Dir            string // Where to write the config, default "."
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
}

// Hooks for tests.
var (
	sshHosts = sshutil.Hosts
	isTTY    = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

func initCommand(cmd *cobra.Command, opts InitOptions) error {
	if !isTTY() {
		opts.NonInteractive = true
	}
	return Init(cmd.OutOrStdout(), opts)
}

// Init creates a new .emgscope.yaml configuration file.
func Init(out io.Writer, opts InitOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	answers := initAnswers{
		Address:   opts.Address,
		Preset:    opts.Preset,
		Threshold: opts.Threshold,
	}
	if answers.Preset == "" {
		answers.Preset = config.DefaultPreset
	}

	if opts.NonInteractive {
		if strings.TrimSpace(answers.Address) == "" {
			return errors.New(errors.ErrConfig,
				"Link address is required in non-interactive mode",
				"Provide --address (see 'emgscope ports') or run interactively")
		}
	} else if err := runInitForm(&answers); err != nil {
		return err
	}

	cfg, err := buildInitConfig(answers)
	if err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	ui.Success(out, "Created %s", configPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  emgscope                  - Start the live plot")
	fmt.Fprintln(out, "  emgscope decode <file>    - Check a capture against the protocol")
	fmt.Fprintln(out, "  emgscope ports            - List serial ports")
	return nil
}

// initAnswers are the values the form collects, as typed.
type initAnswers struct {
	Address   string
	Preset    string
	Threshold string
}

// buildInitConfig turns answers into a validated config.
func buildInitConfig(a initAnswers) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Link.Address = strings.TrimSpace(a.Address)
	cfg.Protocol = config.ProtocolConfig{Preset: a.Preset}
	cfg.Classifier = config.ClassifierConfig{}
	if err := cfg.ApplyPreset(); err != nil {
		return nil, err
	}

	t, ok, err := ParseThreshold(a.Threshold)
	if err != nil {
		return nil, err
	}
	if ok {
		cfg.Classifier.Threshold = t
	}

	if err := config.Validate(cfg, config.RequireLink()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInitForm(a *initAnswers) error {
	presetOptions := make([]huh.Option[string], 0, len(config.Presets))
	for _, name := range config.PresetNames() {
		p := config.Presets[name]
		presetOptions = append(presetOptions, huh.NewOption(name+"  "+p.Description, name))
	}

	if a.Threshold == "" {
		if p, ok := config.LookupPreset(a.Preset); ok && p.Classifier.Threshold > 0 {
			a.Threshold = strconv.FormatFloat(p.Classifier.Threshold, 'f', -1, 64)
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Link address").
				Description("Serial port, tcp://host:port, ssh://host/dev/ttyACM0 or file://capture.log").
				Placeholder("/dev/ttyUSB0").
				Suggestions(addressSuggestions()).
				Value(&a.Address).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("link address is required")
					}
					_, err := link.ParseAddress(strings.TrimSpace(s))
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Firmware output format").
				Options(presetOptions...).
				Value(&a.Preset),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Classifier threshold").
				Description("A state fires when its channel is strictly above this. Leave empty for none.").
				Placeholder("0.6").
				Value(&a.Threshold).
				Validate(func(s string) error {
					_, _, err := ParseThreshold(s)
					if err != nil {
						return fmt.Errorf("must be a number")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}
	return nil
}

// addressSuggestions offers local serial ports and ssh:// addresses for the
// hosts in ~/.ssh/config.
func addressSuggestions() []string {
	var out []string
	if ports, err := listPorts(); err == nil {
		for _, p := range ports {
			out = append(out, p.Name)
		}
	}
	if hosts, err := sshHosts(); err == nil {
		for _, h := range hosts {
			out = append(out, "ssh://"+h.Alias+"/dev/ttyACM0", "ssh://"+h.Alias+"/dev/ttyUSB0")
		}
	}
	return out
}
