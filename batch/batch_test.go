package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/kg"
	"github.com/npillmayer/koopa/kg/gen"
	"github.com/npillmayer/koopa/parse"
	"github.com/npillmayer/koopa/task"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) string {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExpand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.batch")
	defer teardown()
	//
	dir := t.TempDir()
	a := write(t, filepath.Join(dir, "a.kg"), "rule a = \"a\" ;")
	b := write(t, filepath.Join(dir, "sub", "b.kg"), "rule b = \"b\" ;")
	write(t, filepath.Join(dir, "c.txt"), "c")
	single := write(t, filepath.Join(t.TempDir(), "single.txt"), "x")
	files, err := Expand([]string{dir, single}, KGPattern)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, single}, files)
	_, err = Expand([]string{filepath.Join(dir, "nope")}, KGPattern)
	var ioErr *koopa.IOError
	assert.True(t, errors.As(err, &ioErr))
	_, err = Expand([]string{dir}, "[")
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.batch")
	defer teardown()
	//
	dir := t.TempDir()
	good := write(t, filepath.Join(dir, "good.kg"), "grammar good; rule a = \"x\" b ; rule b = $word ;")
	bad := write(t, filepath.Join(dir, "nested", "bad.kg"), "grammar bad; rule a = b ;")
	var messages []string
	var outcomes []Outcome
	tsk := task.Start(context.Background(), "generate", func(p *task.Progress) (err error) {
		outcomes, err = Generate(p.Context(), []string{dir}, Options{Workers: 2}, p)
		return err
	})
	for e := range tsk.Events() {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	state, err := tsk.Wait()
	require.NoError(t, err)
	assert.Equal(t, task.Succeeded, state)
	assert.Len(t, messages, 2)
	require.Len(t, outcomes, 2)
	assert.Equal(t, good, outcomes[0].Path)
	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, gen.Written, outcomes[0].Report.Status)
	assert.Equal(t, bad, outcomes[1].Path)
	var genErr *koopa.GenerationError
	assert.True(t, errors.As(outcomes[1].Err, &genErr))
	assert.Nil(t, outcomes[1].Report)
	assert.Len(t, Failed(outcomes), 1)
	assert.FileExists(t, filepath.Join(dir, "good_grammar.go"))
	//
	outcomes, err = Generate(context.Background(), []string{good}, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, gen.Unchanged, outcomes[0].Report.Status)
	_, err = Generate(context.Background(), []string{filepath.Join(dir, "missing")}, Options{}, nil)
	assert.Error(t, err)
}

func TestGenerateCancelled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.batch")
	defer teardown()
	//
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.kg"), "rule a = \"a\" ;")
	write(t, filepath.Join(dir, "b.kg"), "rule b = \"b\" ;")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcomes, err := Generate(ctx, []string{dir}, Options{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.NoFileExists(t, filepath.Join(dir, "a_grammar.go"))
}

func TestSession(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.batch")
	defer teardown()
	//
	s := NewSession()
	assert.Nil(t, s.Selected())
	s.Add(&parse.Result{Source: "a", Accepted: true, Counts: parse.Counts{Lines: 2, Tokens: 5}, Elapsed: time.Millisecond})
	s.Add(&parse.Result{Source: "b", Err: &koopa.Rejection{Index: 1}, Counts: parse.Counts{Lines: 1, Tokens: 1, Errors: 1}})
	s.Add(&parse.Result{Source: "c", Err: &koopa.IOError{Path: "c", Err: os.ErrNotExist}})
	assert.Equal(t, 3, s.Len())
	require.NoError(t, s.Select(1))
	assert.Equal(t, "b", s.Selected().Source)
	assert.Error(t, s.Select(3))
	require.NoError(t, s.Select(-1))
	assert.Nil(t, s.Selected())
	table, err := s.Table("source", "status", "tokens")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Source", "Status", "Tokens"},
		{"a", "accepted", "5"},
		{"b", "rejected", "1"},
		{"c", "failed", "0"},
	}, table)
	table, err = s.Table()
	require.NoError(t, err)
	assert.Len(t, table[0], len(DefaultColumns))
	_, err = s.Table("source", "colour")
	assert.Error(t, err)
	assert.Equal(t, Summary{Files: 3, Accepted: 1, Lines: 3, Tokens: 6, Errors: 1, Elapsed: time.Millisecond}, s.Summary())
}

func TestParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.batch")
	defer teardown()
	//
	g, err := kg.Compile("greeting.kg", `rule greeting = "hello" $word ;`)
	require.NoError(t, err)
	dir := t.TempDir()
	files := []string{
		write(t, filepath.Join(dir, "ok.txt"), "hello world\n"),
		write(t, filepath.Join(dir, "short.txt"), "hello\n"),
		filepath.Join(dir, "missing.txt"),
	}
	s, err := Parse(context.Background(), files, nil, parse.Grammar(g))
	require.NoError(t, err)
	results := s.Results()
	require.Len(t, results, 3)
	assert.True(t, results[0].Accepted)
	assert.Equal(t, "rejected", status(results[1]))
	assert.Equal(t, "failed", status(results[2]))
	//
	_, err = Parse(context.Background(), files, nil)
	assert.Error(t, err, "grammar is required")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err = Parse(ctx, files, nil, parse.Grammar(g))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Len())
}
