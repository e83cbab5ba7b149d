package main

import (
	"fmt"

	"github.com/npillmayer/koopa/kg"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var ebnfCmd = &cobra.Command{
	Use:   "ebnf <file.kg>",
	Short: "Print a KG grammar as EBNF",
	Long: `Prints the grammar of a KG file in EBNF notation and verifies the
result. Look-ahead expressions and context checks have no counterpart in
EBNF and are left out.`,
	Args: cobra.ExactArgs(1),
	RunE: runEBNF,
}

func init() {
	rootCmd.AddCommand(ebnfCmd)
}

func runEBNF(cmd *cobra.Command, args []string) error {
	def, err := kg.ReadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Print(kg.ToEBNF(def))
	if err := kg.VerifyEBNF(def); err != nil {
		return fmt.Errorf("EBNF of %s does not verify: %w", args[0], err)
	}
	pterm.Success.Println("EBNF verified")
	return nil
}
