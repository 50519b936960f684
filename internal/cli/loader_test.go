package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenarioFile_YAML(t *testing.T) {
	s, err := LoadScenarioFile("testdata/scenarios/square.yaml")
	require.NoError(t, err)

	assert.Equal(t, "square", s.Name)
	assert.Equal(t, 3.0, s.Values["x"])
	require.Len(t, s.Steps, 1)
	assert.Equal(t, "mul", s.Steps[0].Op)
}

func TestLoadScenarioFile_CUE(t *testing.T) {
	s, err := LoadScenarioFile("testdata/scenarios/cube.cue")
	require.NoError(t, err)

	assert.Equal(t, "cube", s.Name)
	assert.Equal(t, "y", s.Output)
	assert.Equal(t, 2.0, s.Values["x"])
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "sq", s.Steps[0].Let)
	assert.Equal(t, 12.0, s.Expect.Grads["x"])
	require.NotNil(t, s.Expect.Nodes)
	assert.Equal(t, 3, *s.Expect.Nodes)
}

func TestLoadScenarioFile_Errors(t *testing.T) {
	tmp := t.TempDir()
	txt := filepath.Join(tmp, "scenario.txt")
	require.NoError(t, os.WriteFile(txt, []byte("name: x"), 0o644))

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", "testdata/scenarios/nope.yaml", ErrCodeNotFound},
		{"unsupported extension", txt, ErrCodeUnsupportedFile},
		{"CUE conflict", "testdata/invalid/conflict.cue", ErrCodeBuildFailed},
		{"undefined reference", "testdata/invalid/undefined_ref.yaml", ErrCodeInvalidScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenarioFile(tt.path)
			require.Error(t, err)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code)
		})
	}
}

func TestLoadScenarioFile_CUEErrorHasPosition(t *testing.T) {
	_, err := LoadScenarioFile("testdata/invalid/conflict.cue")
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	require.True(t, le.Pos.IsValid())
	assert.Contains(t, err.Error(), "conflict.cue:")
}

func TestLoadError_Format(t *testing.T) {
	assert.Equal(t, "E001: boom", (&LoadError{Code: "E001", Message: "boom"}).Error())
	assert.Equal(t, "a.yaml: E007: bad", (&LoadError{Code: "E007", Message: "bad", Path: "a.yaml"}).Error())
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := FindScenarioFiles("testdata", "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "invalid", "conflict.cue"),
		filepath.Join("testdata", "invalid", "undefined_ref.yaml"),
		filepath.Join("testdata", "invalid", "wrong_expect.yaml"),
		filepath.Join("testdata", "scenarios", "cube.cue"),
		filepath.Join("testdata", "scenarios", "square.yaml"),
	}, files)

	files, err = FindScenarioFiles("testdata/scenarios", "cu*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "cube.cue")}, files)

	_, err = FindScenarioFiles("testdata/scenarios", "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}
