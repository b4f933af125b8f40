package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"transcribe", "extract", "serve", "setup", "models", "version"} {
		require.Truef(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCommandVersionTemplate(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	require.Regexp(t, `^vaani v\d+\.\d+\.\d+`, out.String())
}

func TestSanitizeLanguage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{input: "", want: "hi"},
		{input: "  ", want: "hi"},
		{input: "HI", want: "hi"},
		{input: "Auto", want: "auto"},
		{input: "en", want: "en"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, sanitizeLanguage(tc.input))
	}
}
