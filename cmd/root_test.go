package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr1/b3-2d/internal/conf"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	settings := &conf.Settings{}
	settings.Plot.Scalar = "material_id"
	settings.Plot.Width = 640
	settings.Plot.Height = 480
	settings.Anba.Env = "anba4-env"

	root := RootCommand(settings)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMeshRequiresFlags(t *testing.T) {
	_, err := execute(t, "mesh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "vtp-file")
	assert.Contains(t, err.Error(), "output-dir")
}

func TestPlotRequiresFlags(t *testing.T) {
	_, err := execute(t, "plot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "mesh-file")
}

func TestAnbaRequiresOutputDir(t *testing.T) {
	_, err := execute(t, "anba")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output-dir")
}

func TestStepRequiresName(t *testing.T) {
	_, err := execute(t, "step", "--config", "config.yaml")
	require.Error(t, err)
}

func TestPlotMissingInputFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "plot",
		"--mesh-file", filepath.Join(dir, "absent.vtk"),
		"--output-file", filepath.Join(dir, "out.png"))
	assert.Error(t, err)
}

func TestHelpListsSubcommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"mesh", "plot", "anba", "post", "step"} {
		assert.Contains(t, out, name)
	}
}
