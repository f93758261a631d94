package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hookpatch/pkg/bulkpatch"
	"github.com/Sumatoshi-tech/hookpatch/pkg/observability"
	"github.com/Sumatoshi-tech/hookpatch/pkg/render"
)

// ApplyCommand holds the flags of the apply subcommand.
type ApplyCommand struct {
	globals *GlobalFlags
	target  targetFlags
	dryRun  bool
	diff    bool
	summary bool
}

// NewApplyCommand creates the apply subcommand.
func NewApplyCommand(globals *GlobalFlags) *cobra.Command {
	ac := &ApplyCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Insert the hook import and call into every configured file",
		Long: `Process each configured file in order. Files that already mention the
marker are rewritten unchanged; missing files are skipped silently. A failure
on one file is reported and the run continues with the next one. The command
exits successfully once the run has started, whatever happened to each file.`,
		Args: cobra.NoArgs,
		RunE: ac.run,
	}

	ac.target.register(cmd)
	cmd.Flags().BoolVar(&ac.target.skipUnchanged, "skip-unchanged", false, "do not rewrite files whose content did not change")
	cmd.Flags().BoolVarP(&ac.dryRun, "dry-run", "n", false, "compute the patch without writing any file")
	cmd.Flags().BoolVar(&ac.diff, "diff", false, "print a diff of every changed file")
	cmd.Flags().BoolVar(&ac.summary, "summary", false, "print a summary table after the run")

	return cmd
}

func (ac *ApplyCommand) run(cmd *cobra.Command, _ []string) error {
	outErr := ac.target.validateOutput()
	if outErr != nil {
		return outErr
	}

	cfg, err := loadConfig(cmd, ac.globals, &ac.target)
	if err != nil {
		return err
	}

	frags, err := cfg.Fragments()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	transcript := out
	if ac.globals.Quiet || ac.target.output != render.FormatText {
		transcript = io.Discard
	}

	rep, err := runPatcher(cmd, ac.globals, cfg, observability.ModeApply, bulkpatch.Options{
		BaseDir:       cfg.BaseDir,
		FileNames:     cfg.FileNames,
		Fragments:     frags,
		DryRun:        ac.dryRun,
		SkipUnchanged: cfg.SkipUnchanged,
	}, transcript)
	if err != nil {
		return err
	}

	if ac.target.output != render.FormatText {
		return render.Write(out, ac.target.output, rep)
	}

	r := render.New(out, plainOutput(ac.globals))

	if ac.diff {
		r.Diffs(rep)
	}

	if ac.summary {
		r.Summary(rep)
	}

	return nil
}
