package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statewalk/statewalk/internal/harness"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files: schema-check the YAML and compile the declared
objects and processes, without exploring any states.

Example:
  statewalk validate examples/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args)
		},
	}
	return cmd
}

type validateReport struct {
	Scenarios []string `json:"scenarios"`
}

func runValidate(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	report := validateReport{}
	for _, path := range paths {
		s, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid scenario %s", path), err)
		}
		if _, err := harness.Compile(s); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s does not compile", path), err)
		}
		report.Scenarios = append(report.Scenarios, s.Name)
	}

	text := fmt.Sprintf("%d scenario(s) valid\n", len(report.Scenarios))
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(text, report)
}
