package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/koopa/combinator"
	"github.com/npillmayer/koopa/kg"
	"github.com/npillmayer/koopa/parse"
	"github.com/npillmayer/koopa/tree"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	replGrammar string
	replStart   string
)

var replCmd = &cobra.Command{
	Use:   "repl --grammar <file.kg>",
	Short: "Parse input lines interactively",
	Long: `Starts an interactive shell. Every line entered is parsed with the
grammar and the resulting syntax tree is printed. Lines starting with ':'
are commands:

  :start <rule>   switch the start rule
  :rules          list the rules of the grammar
  :quit           leave the shell (or <ctrl>D)`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVarP(&replGrammar, "grammar", "g", "", "KG file with the grammar")
	replCmd.Flags().StringVarP(&replStart, "start", "s", "", "start rule (default: first rule)")
	replCmd.MarkFlagRequired("grammar")
}

// Intp is our interpreter object.
type Intp struct {
	grammar *combinator.Grammar
	start   string
	repl    *readline.Instance
	out     io.Writer
}

func runREPL(cmd *cobra.Command, args []string) error {
	g, err := kg.LoadFile(replGrammar)
	if err != nil {
		return err
	}
	repl, err := readline.New(g.Name() + "> ")
	if err != nil {
		return err
	}
	defer repl.Close()
	intp := &Intp{grammar: g, start: replStart, repl: repl, out: repl.Stdout()}
	pterm.Info.Println(fmt.Sprintf("Grammar %s with start rule %s", g.Name(), intp.startRule()))
	tracer().Infof("Quit with <ctrl>D")
	intp.REPL()
	return nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.Eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
		}
		if quit {
			break
		}
	}
	fmt.Fprintln(intp.out, "Good bye!")
}

// Eval parses a line of input, or executes a command.
func (intp *Intp) Eval(line string) (bool, error) {
	if strings.HasPrefix(line, ":") {
		return intp.command(strings.Fields(line[1:]))
	}
	result, err := parse.Text("repl", line, parse.Grammar(intp.grammar), parse.Start(intp.start))
	if err != nil {
		return false, err
	}
	if !result.Accepted {
		return false, result.Err
	}
	intp.printTree(result.Tree)
	pterm.Info.Println(fmt.Sprintf("accepted %d tokens in %s", result.Counts.Tokens, result.Elapsed))
	return false, nil
}

func (intp *Intp) command(args []string) (bool, error) {
	if len(args) == 0 {
		return false, errors.New("missing command")
	}
	switch args[0] {
	case "quit", "q":
		return true, nil
	case "rules":
		fmt.Fprintln(intp.out, strings.Join(intp.grammar.RuleNames(), " "))
	case "start":
		if len(args) != 2 {
			return false, errors.New("usage: :start <rule>")
		}
		if _, ok := intp.grammar.Rule(args[1]); !ok {
			return false, fmt.Errorf("no rule %s in grammar %s", args[1], intp.grammar.Name())
		}
		intp.start = args[1]
	default:
		return false, fmt.Errorf("unknown command :%s", args[0])
	}
	return false, nil
}

func (intp *Intp) startRule() string {
	if intp.start != "" {
		return intp.start
	}
	return intp.grammar.Start()
}

func (intp *Intp) printTree(t *tree.Tree) {
	var ll pterm.LeveledList
	for _, e := range tree.Leveled(t, t.Root(), combinator.Significant) {
		ll = append(ll, pterm.LeveledListItem{Level: e.Level, Text: e.Label})
	}
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root).Render()
}
