package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/npillmayer/koopa/config"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	traceOpt string
	cfg      = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "kgc",
	Short: "Compiler for KG grammar definitions",
	Long: `kgc compiles grammar definitions written in KG into Go code, which
builds the grammar with parser combinators. It also parses input files
with a grammar, interactively or in batches.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: kgc.yaml or kgc.toml)")
	rootCmd.PersistentFlags().StringVar(&traceOpt, "trace", "", "trace level [Debug|Info|Error]")
}

// setup loads the configuration and sets the trace level.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.Find(".")
	}
	if err != nil {
		return err
	}
	if traceOpt != "" {
		cfg.Trace = traceOpt
	}
	setTraceLevel(cfg.TraceLevel())
	if cfg.Path != "" {
		tracer().Infof("configuration read from %s", cfg.Path)
	}
	return nil
}

var traceKeys = []string{
	"koopa.cli", "koopa.scanner", "koopa.stream", "koopa.parser",
	"koopa.tree", "koopa.kg", "koopa.batch",
}

func setTraceLevel(level tracing.TraceLevel) {
	if gtrace.SyntaxTracer != nil {
		gtrace.SyntaxTracer.SetTraceLevel(level)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
