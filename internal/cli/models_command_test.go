package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelsCommandListsRegistry(t *testing.T) {
	t.Parallel()

	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-tiny.bin"), []byte("stub"), 0o644))

	out := new(bytes.Buffer)
	app := &appState{out: out, modelDir: modelDir}

	cmd := newModelsCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	listing := out.String()
	require.Contains(t, listing, "NAME")
	require.Contains(t, listing, "tiny")
	require.Contains(t, listing, "large-v3")
	require.Contains(t, listing, "downloaded")
	require.Contains(t, listing, "not downloaded")
}
