package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractCommandPrintsOutputPath(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	var gotInput, gotOutput string
	app := &appState{
		out: out,
		extractFn: func(_ context.Context, inputPath, outputPath string) (string, error) {
			gotInput = inputPath
			gotOutput = outputPath
			return "/tmp/hearing.wav", nil
		},
	}

	cmd := newExtractCmd(app)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"-o", "/tmp/hearing.wav", "/media/hearing.mp4"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "/media/hearing.mp4", gotInput)
	require.Equal(t, "/tmp/hearing.wav", gotOutput)
	require.Equal(t, "/tmp/hearing.wav\n", out.String())
}

func TestExtractCommandPropagatesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("ffmpeg exploded")
	app := &appState{
		out: new(bytes.Buffer),
		extractFn: func(_ context.Context, _, _ string) (string, error) {
			return "", wantErr
		},
	}

	cmd := newExtractCmd(app)
	cmd.SetOut(app.out)
	cmd.SetErr(app.out)
	cmd.SetArgs([]string{"/media/hearing.mp4"})

	require.ErrorIs(t, cmd.Execute(), wantErr)
}

func TestExtractCommandRequiresExactlyOneArg(t *testing.T) {
	t.Parallel()

	app := &appState{out: new(bytes.Buffer)}
	cmd := newExtractCmd(app)
	cmd.SetOut(app.out)
	cmd.SetErr(app.out)
	cmd.SetArgs([]string{})

	require.Error(t, cmd.Execute())
}
