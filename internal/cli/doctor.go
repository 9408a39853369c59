package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/config"
	"github.com/basturkme/4IER-HMI/internal/doctor"
	"github.com/basturkme/4IER-HMI/internal/ui"
	"github.com/charmbracelet/lipgloss"
)

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(ctx context.Context, out io.Writer, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load errors are reported by the config checks.
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		cfg = nil
	}

	checks := doctor.NewChecks(cfgFile, cfg)
	results := doctor.RunAll(ctx, checks)

	if asJSON {
		return outputDoctorJSON(out, checks, results)
	}
	outputDoctorText(out, checks, results)
	return nil
}

// groupResults buckets result indices by category, in report order.
func groupResults(checks []doctor.Check) map[string][]int {
	grouped := make(map[string][]int)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], i)
	}
	return grouped
}

func outputDoctorJSON(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := groupResults(checks)

	output := DoctorOutput{Categories: []CategoryOutput{}}
	for _, cat := range doctor.Categories {
		indices := grouped[cat]
		if len(indices) == 0 {
			continue
		}
		co := CategoryOutput{Name: cat}
		for _, idx := range indices {
			co.Results = append(co.Results, results[idx])
		}
		output.Categories = append(output.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Bold("emgscope diagnostic report"))
	fmt.Fprintln(out)

	grouped := groupResults(checks)
	for _, category := range doctor.Categories {
		indices := grouped[category]
		if len(indices) == 0 {
			continue
		}

		fmt.Fprintln(out, ui.Bold(category))
		for _, idx := range indices {
			result := results[idx]

			symbol, style := ui.SymbolSuccess, successStyle
			switch result.Status {
			case doctor.StatusWarn:
				symbol, style = ui.SymbolWarning, warnStyle
			case doctor.StatusFail:
				symbol, style = ui.SymbolFail, errorStyle
			}
			fmt.Fprintf(out, "  %s %s\n", style.Render(symbol), result.Message)

			if result.Suggestion != "" && result.Status != doctor.StatusPass {
				for _, line := range strings.Split(result.Suggestion, "\n") {
					fmt.Fprintf(out, "    %s\n", ui.Muted(line))
				}
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	summary := doctor.Summary(results)
	if doctor.HasIssues(results) {
		ui.Fail(out, "%s", summary)
	} else {
		ui.Success(out, "%s", summary)
	}
	fmt.Fprintln(out)
}
