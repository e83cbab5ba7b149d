package gen

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/kg"
	"github.com/npillmayer/koopa/kg/template"
	"github.com/pmezard/go-difflib/difflib"
)

// Status tells what happened to a generated file.
type Status int

// Outcomes of generating a file.
const (
	Written   Status = iota // file has been (re-)written
	Unchanged               // fingerprint unchanged, file left alone
	Diffed                  // diff produced, file left alone
)

func (s Status) String() string {
	return [...]string{"written", "unchanged", "diffed"}[s]
}

// Options control the generation of files.
type Options struct {
	Output    string          // directory for generated files; empty: next to the KG file
	Package   string          // Go package name; derived from the output directory if empty
	Templates *template.Group // nil for the default templates
	Diff      bool            // produce a unified diff instead of writing
	Force     bool            // write even if the fingerprint is unchanged
}

// Report describes the generation of a single file.
type Report struct {
	Path        string // KG file
	Output      string // generated Go file
	Grammar     string
	Status      Status
	Fingerprint string
	Diff        string   // unified diff, if requested
	Unused      []string // rules never referenced
}

const fingerprintPrefix = "// fingerprint: "

// File generates Go code for a KG file. Grammars imported by the definition
// are read from KG files in the same directory, named after the grammar.
//
// Failures are reported as *koopa.GenerationError.
func File(path string, opts Options) (*Report, error) {
	fail := func(err error) (*Report, error) {
		return nil, &koopa.GenerationError{Path: path, Err: err}
	}
	def, err := kg.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	var imps []kg.RuleSet
	for _, name := range def.Imports {
		imp, err := kg.ReadFile(kg.ImportPath(path, name))
		if err != nil {
			return fail(fmt.Errorf("imported grammar %s: %w", name, err))
		}
		imps = append(imps, imp)
	}
	res, err := kg.Resolve(def, imps...)
	if err != nil {
		return fail(err)
	}
	dir := opts.Output
	if dir == "" {
		dir = filepath.Dir(path)
	}
	pkg := opts.Package
	if pkg == "" {
		pkg = DirPackage(dir)
	}
	gen := &Generator{Package: pkg, Templates: opts.Templates}
	src, err := gen.Generate(def, imps...)
	if err != nil {
		return fail(err)
	}
	report := &Report{
		Path:    path,
		Output:  filepath.Join(dir, FileName(def)),
		Grammar: def.Grammar,
		Unused:  res.Unused,
	}
	report.Fingerprint, _ = gen.Fingerprint(def)
	old, err := os.ReadFile(report.Output)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fail(&koopa.IOError{Path: report.Output, Err: err})
	}
	if opts.Diff {
		report.Status = Diffed
		report.Diff, err = difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(old)),
			B:        difflib.SplitLines(string(src)),
			FromFile: report.Output,
			ToFile:   report.Output + " (generated)",
			Context:  3,
		})
		if err != nil {
			return fail(err)
		}
		return report, nil
	}
	if !opts.Force && old != nil && fingerprint(old) == report.Fingerprint {
		tracer().Infof("%s is up to date", report.Output)
		report.Status = Unchanged
		return report, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(&koopa.IOError{Path: dir, Err: err})
	}
	if err := os.WriteFile(report.Output, src, 0o644); err != nil {
		return fail(&koopa.IOError{Path: report.Output, Err: err})
	}
	tracer().Infof("generated %s from %s", report.Output, path)
	report.Status = Written
	return report, nil
}

// DirPackage returns the Go package name for files generated into dir.
// Grammars generated into the same directory share a package: if dir
// already holds Go files, their package name is used, otherwise the name is
// derived from the directory's name.
func DirPackage(dir string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.go"))
	for _, m := range matches {
		if strings.HasSuffix(m, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(token.NewFileSet(), m, nil, parser.PackageClauseOnly)
		if err == nil {
			return f.Name.Name
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return PackageName(filepath.Base(dir))
}

// fingerprint extracts the fingerprint from a generated file, if any.
func fingerprint(src []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for i := 0; sc.Scan() && i < 5; i++ {
		if line := sc.Text(); strings.HasPrefix(line, fingerprintPrefix) {
			return strings.TrimPrefix(line, fingerprintPrefix)
		}
	}
	return ""
}
