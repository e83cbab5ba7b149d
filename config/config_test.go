package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/koopa"
	"github.com/npillmayer/koopa/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.cli")
	defer teardown()
	//
	c, err := Find(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{Trace: "Info", Workers: 1, Encoding: "utf-8", Format: "free"}, c)
	assert.NoError(t, c.Validate())
}

func TestYAML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.cli")
	defer teardown()
	//
	dir := t.TempDir()
	path := write(t, dir, "kgc.yaml", "trace: Debug\noutput: gen\nworkers: 4\nformat: fixed\nline-comment: \"*>\"\n")
	c, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, "gen", c.Output)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "*>", c.LineComment)
	assert.Equal(t, scanner.Fixed, c.SourceFormat())
	assert.Equal(t, "utf-8", c.Encoding, "defaulted")
}

func TestTOML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.cli")
	defer teardown()
	//
	dir := t.TempDir()
	path := write(t, dir, "kgc.toml", "package = \"grammars\"\nencoding = \"latin1\"\nline_comment = \"//\"\n")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grammars", c.Package)
	assert.Equal(t, "latin1", c.Encoding)
	assert.Equal(t, "//", c.LineComment)
	assert.Equal(t, 1, c.Workers)
}

func TestInvalid(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "koopa.cli")
	defer teardown()
	//
	dir := t.TempDir()
	for name, content := range map[string]string{
		"bad-format.yaml":   "format: columns\n",
		"bad-encoding.yaml": "encoding: ebcdic\n",
		"bad-workers.toml":  "workers = -2\n",
		"broken.yaml":       "trace: [\n",
		"config.ini":        "trace=Debug\n",
	} {
		_, err := Load(write(t, dir, name, content))
		assert.Error(t, err, name)
	}
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	var ioErr *koopa.IOError
	assert.True(t, errors.As(err, &ioErr))
}
