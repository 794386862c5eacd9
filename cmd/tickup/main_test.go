package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tickup/internal/model"
)

const testPage = `
title = "Launch"

[[section]]
title = "Traffic"

[[section.counter]]
id = "visits"
label = "Visits"
[section.counter.settings]
end = 100
duration = 1
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	path := filepath.Join(dir, "launch.toml")
	require.NoError(t, os.WriteFile(path, []byte(testPage), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFormatCommand(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "format", "1234.5", "--attr", "decimals=2", "--attr", "separator=true")
	require.NoError(t, err)
	require.Equal(t, "1,234.50\n", out)

	out, err = execute(t, "format", "2500000000", "--attr", "currency=true", "--attr", "data-purecounter-currencysymbol=$")
	require.NoError(t, err)
	require.Equal(t, "$2.5 B\n", out)

	_, err = execute(t, "format", "abc")
	require.Error(t, err)
	_, err = execute(t, "format", "1", "--attr", "noequals")
	require.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	path := setupEnv(t)

	out, err := execute(t, "render", path, "--width", "40", "--height", "10")
	require.NoError(t, err)
	require.Contains(t, out, "Launch\n")
	require.Contains(t, out, "Mode: intersection  Counters: 1  Settled: 1  Elapsed: 5s")
	require.Contains(t, out, "visits")
	require.Contains(t, out, "100")

	out, err = execute(t, "render", path, "--width", "40", "--height", "10", "--legacy")
	require.NoError(t, err)
	require.Contains(t, out, "Mode: legacy")
}

func TestRenderCommandUsesConfigFile(t *testing.T) {
	path := setupEnv(t)
	cfgPath := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "tickup", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("[run]\nlegacy = true\n"), 0o644))

	out, err := execute(t, "render", path, "--width", "40", "--height", "10")
	require.NoError(t, err)
	require.Contains(t, out, "Mode: legacy")

	// An explicit flag wins over the file.
	out, err = execute(t, "render", path, "--width", "40", "--height", "10", "--legacy=false")
	require.NoError(t, err)
	require.Contains(t, out, "Mode: intersection")
}

func TestLibraryCommands(t *testing.T) {
	path := setupEnv(t)

	out, err := execute(t, "import", path)
	require.NoError(t, err)
	require.Equal(t, "Imported launch (1 counters)\n", out)

	out, err = execute(t, "pages")
	require.NoError(t, err)
	require.Contains(t, out, "launch")
	require.Contains(t, out, "Launch")

	_, err = execute(t, "delete", "launch")
	require.NoError(t, err)
	_, err = execute(t, "delete", "launch")
	require.Error(t, err)

	out, err = execute(t, "pages")
	require.NoError(t, err)
	require.Equal(t, "No pages found.\n", out)
}

func TestDemoWritesPage(t *testing.T) {
	setupEnv(t)
	outPath := filepath.Join(t.TempDir(), "demo.toml")

	out, err := execute(t, "demo", "--count", "5", "--seed", "3", "--out", outPath)
	require.NoError(t, err)
	require.Contains(t, out, "(5 counters)")

	out, err = execute(t, "render", outPath, "--width", "80", "--height", "200", "--elapsed", "1m")
	require.NoError(t, err)
	require.Contains(t, out, "Counters: 5")
}

func TestRunRequiresPage(t *testing.T) {
	setupEnv(t)
	_, err := execute(t)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no page given")
}

func TestParseAttrs(t *testing.T) {
	attrs, err := parseAttrs([]string{"End=10", "data-purecounter-start=2", "once=false"}, "data-purecounter-")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"data-purecounter-end":   "10",
		"data-purecounter-start": "2",
		"data-purecounter-once":  "false",
	}, attrs)

	_, err = parseAttrs([]string{"=3"}, "data-purecounter-")
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{Namespace: "data-x-", Marker: "x", Threshold: 0.5}
	require.NoError(t, validateConfig(ok))

	bad := ok
	bad.Threshold = 1.5
	require.Error(t, validateConfig(bad))

	bad = ok
	bad.RootMargin = -1
	require.Error(t, validateConfig(bad))

	bad = ok
	bad.Marker = " "
	require.Error(t, validateConfig(bad))
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	require.Contains(t, defaultConfigTemplate(), "[run]")
	require.Contains(t, defaultConfigTemplate(), "data-purecounter-")
}
