package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torokati44/binaryen/internal/errors"
	"github.com/torokati44/binaryen/internal/passes"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, passes.DefaultPasses, c.Passes)
	assert.Equal(t, "unit", c.StoreWidth)
	assert.NoError(t, c.Validate())

	opts := c.PassOptions()
	assert.Equal(t, passes.UnitWidth, opts.StoreWidth)
	assert.False(t, opts.IntrinsifyLibc)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
passes = ["vacuum", "use-bulk-memory-intrinsics"]
workers = 4
debug = true
store_width = "access"
intrinsify_libc = true
verbosity = 2
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"vacuum", "use-bulk-memory-intrinsics"}, c.Passes)
	assert.Equal(t, 4, c.Workers)
	assert.True(t, c.Debug)
	assert.Equal(t, 2, c.Verbosity)
	assert.Empty(t, c.LogFile)

	opts := c.PassOptions()
	assert.Equal(t, passes.AccessWidth, opts.StoreWidth)
	assert.True(t, opts.IntrinsifyLibc)
}

func TestParseKeepsDefaults(t *testing.T) {
	c, err := Parse([]byte(`debug = true`))
	require.NoError(t, err)
	assert.Equal(t, passes.DefaultPasses, c.Passes)
	assert.Equal(t, "unit", c.StoreWidth)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`passes = ["vacuum", "vaccum"]`))
	require.Error(t, err)
	var compilerErr errors.CompilerError
	require.ErrorAs(t, err, &compilerErr)
	assert.Equal(t, errors.ErrorUnknownPass, compilerErr.Code)

	_, err = Parse([]byte(`store_width = "wide"`))
	assert.ErrorContains(t, err, "store_width")

	_, err = Parse([]byte(`workers = -1`))
	assert.ErrorContains(t, err, "workers")

	_, err = Parse([]byte(`passes = [`))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	c := Default()
	c.Workers = 3
	c.LogFile = "bulkmem.log"
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	input := filepath.Join(nested, "input.wat")
	require.NoError(t, os.WriteFile(input, []byte("(module)"), 0644))

	assert.Empty(t, FindConfigFile(filepath.Join(root, "missing")))

	path := filepath.Join(root, ConfigFileName)
	require.NoError(t, Default().Save(path))

	found := FindConfigFile(input)
	expected, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	actual, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}
