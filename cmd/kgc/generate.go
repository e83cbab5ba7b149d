package main

import (
	"fmt"

	"github.com/npillmayer/koopa/batch"
	"github.com/npillmayer/koopa/kg/gen"
	"github.com/npillmayer/koopa/kg/template"
	"github.com/npillmayer/koopa/task"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	genOut     string
	genPackage string
	genDiff    bool
	genForce   bool
	genWorkers int
)

var generateCmd = &cobra.Command{
	Use:   "generate <path>...",
	Short: "Generate Go code from KG files",
	Long: `Generates a Go file for every KG file. Directories are searched for
KG files recursively. Files with an unchanged fingerprint are left alone,
unless --force is given. With --diff, a unified diff against the existing
file is printed instead of writing it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "output directory (default: next to the KG file)")
	generateCmd.Flags().StringVarP(&genPackage, "package", "p", "", "Go package name of generated files (default: derived from the output directory)")
	generateCmd.Flags().BoolVar(&genDiff, "diff", false, "print a diff instead of writing files")
	generateCmd.Flags().BoolVarP(&genForce, "force", "f", false, "write files even if unchanged")
	generateCmd.Flags().IntVarP(&genWorkers, "workers", "w", 0, "number of parallel workers")
}

func generateOptions(cmd *cobra.Command) (batch.Options, error) {
	opts := batch.Options{
		Options: gen.Options{
			Output:  cfg.Output,
			Package: cfg.Package,
			Diff:    genDiff,
			Force:   genForce,
		},
		Workers: cfg.Workers,
	}
	if cmd.Flags().Changed("out") {
		opts.Output = genOut
	}
	if cmd.Flags().Changed("package") {
		opts.Package = genPackage
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = genWorkers
	}
	if cfg.Templates != "" {
		group, err := template.Load(cfg.Templates)
		if err != nil {
			return opts, err
		}
		opts.Templates = group
	}
	return opts, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts, err := generateOptions(cmd)
	if err != nil {
		return err
	}
	var outcomes []batch.Outcome
	t := task.Start(cmd.Context(), "generate", func(p *task.Progress) (err error) {
		outcomes, err = batch.Generate(p.Context(), args, opts, p)
		return err
	})
	for e := range t.Events() {
		tracer().Debugf("%s", e)
	}
	if state, err := t.Wait(); err != nil {
		return err
	} else if state == task.Cancelled {
		return fmt.Errorf("generation cancelled")
	}
	for _, o := range outcomes {
		if o.Err != nil {
			pterm.Error.Println(o.Err.Error())
			continue
		}
		r := o.Report
		switch r.Status {
		case gen.Diffed:
			fmt.Print(r.Diff)
		case gen.Unchanged:
			pterm.Info.Println(fmt.Sprintf("%s is up to date", r.Output))
		default:
			pterm.Success.Println(fmt.Sprintf("%s → %s", r.Path, r.Output))
		}
		for _, name := range r.Unused {
			pterm.Warning.Println(fmt.Sprintf("%s: rule %s is never used", r.Path, name))
		}
	}
	if failed := batch.Failed(outcomes); len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(outcomes))
	}
	return nil
}
