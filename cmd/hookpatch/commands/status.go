package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookpatch/pkg/bulkpatch"
	"github.com/Sumatoshi-tech/hookpatch/pkg/observability"
	"github.com/Sumatoshi-tech/hookpatch/pkg/render"
)

// StatusCommand holds the flags of the status subcommand.
type StatusCommand struct {
	globals *GlobalFlags
	target  targetFlags
}

// NewStatusCommand creates the read-only status subcommand.
func NewStatusCommand(globals *GlobalFlags) *cobra.Command {
	sc := &StatusCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which configured files are missing, patched or pending",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	sc.target.register(cmd)

	return cmd
}

func (sc *StatusCommand) run(cmd *cobra.Command, _ []string) error {
	outErr := sc.target.validateOutput()
	if outErr != nil {
		return outErr
	}

	cfg, err := loadConfig(cmd, sc.globals, &sc.target)
	if err != nil {
		return err
	}

	frags, err := cfg.Fragments()
	if err != nil {
		return err
	}

	rep, err := runPatcher(cmd, sc.globals, cfg, observability.ModeStatus, bulkpatch.Options{
		BaseDir:   cfg.BaseDir,
		FileNames: cfg.FileNames,
		Fragments: frags,
		DryRun:    true,
	}, io.Discard)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if sc.target.output != render.FormatText {
		return render.Write(out, sc.target.output, rep)
	}

	render.New(out, plainOutput(sc.globals)).Status(rep)

	return nil
}
