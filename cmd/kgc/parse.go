package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/koopa/batch"
	"github.com/npillmayer/koopa/combinator"
	"github.com/npillmayer/koopa/kg"
	"github.com/npillmayer/koopa/parse"
	"github.com/npillmayer/koopa/task"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	parseGrammar string
	parseStart   string
	parseColumns []string
)

var parseCmd = &cobra.Command{
	Use:   "parse --grammar <file.kg> <file>...",
	Short: "Parse files with a KG grammar",
	Long: `Parses input files with a grammar read from a KG file and prints a
table of results. Available columns are: ` + columnIDs() + `.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseGrammar, "grammar", "g", "", "KG file with the grammar")
	parseCmd.Flags().StringVarP(&parseStart, "start", "s", "", "start rule (default: first rule)")
	parseCmd.Flags().StringSliceVarP(&parseColumns, "columns", "c", nil, "columns of the result table")
	parseCmd.MarkFlagRequired("grammar")
}

func columnIDs() string {
	ids := make([]string, len(batch.Columns))
	for i, c := range batch.Columns {
		ids[i] = c.ID
	}
	return strings.Join(ids, ", ")
}

// parseOptions collects the options of a parse from flags and configuration.
func parseOptions(g *combinator.Grammar) ([]parse.Option, error) {
	opts := []parse.Option{
		parse.Grammar(g),
		parse.Start(parseStart),
		parse.Encoding(cfg.Encoding),
		parse.SourceFormat(cfg.SourceFormat()),
	}
	if cfg.LineComment != "" {
		opts = append(opts, parse.LineComment(cfg.LineComment))
	}
	if parseStart != "" {
		if _, ok := g.Rule(parseStart); !ok {
			return nil, fmt.Errorf("grammar %s has no rule %s", g.Name(), parseStart)
		}
	}
	return opts, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	g, err := kg.LoadFile(parseGrammar)
	if err != nil {
		return err
	}
	opts, err := parseOptions(g)
	if err != nil {
		return err
	}
	var session *batch.Session
	t := task.Start(cmd.Context(), "parse", func(p *task.Progress) (err error) {
		session, err = batch.Parse(p.Context(), args, p, opts...)
		return err
	})
	for e := range t.Events() {
		tracer().Debugf("%s", e)
	}
	if _, err := t.Wait(); err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("parse cancelled")
	}
	table, err := session.Table(parseColumns...)
	if err != nil {
		return err
	}
	pterm.DefaultTable.WithHasHeader().WithData(table).Render()
	sum := session.Summary()
	pterm.Info.Println(fmt.Sprintf("%d of %d files accepted, %d lines, %d tokens in %s",
		sum.Accepted, sum.Files, sum.Lines, sum.Tokens, sum.Elapsed))
	if sum.Accepted < sum.Files {
		return fmt.Errorf("%d files not accepted", sum.Files-sum.Accepted)
	}
	return nil
}
