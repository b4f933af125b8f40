package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveVersionOutsideGitRepo(t *testing.T) {
	t.Parallel()

	got := resolveVersion("1.2.3", func(args ...string) (string, error) {
		return "", errors.New("not a git repo")
	})
	require.Equal(t, "1.2.3", got)
}

func TestResolveVersionOnReleaseTag(t *testing.T) {
	t.Parallel()

	got := resolveVersion("1.2.3", func(args ...string) (string, error) {
		return "v1.2.3", nil
	})
	require.Equal(t, "1.2.3", got)
}

func TestResolveVersionAppendsDescribeSuffix(t *testing.T) {
	t.Parallel()

	got := resolveVersion("1.2.3", func(args ...string) (string, error) {
		switch args[0] {
		case "rev-parse":
			return ".git", nil
		case "describe":
			if len(args) > 1 && args[1] == "--tags" && args[len(args)-1] == "--exact-match" {
				return "", errors.New("no tag")
			}
			return "v1.2.3-4-gabc1234", nil
		}
		return "", errors.New("unexpected git call")
	})
	require.Equal(t, "1.2.3-4-gabc1234", got)
}

func TestResolveVersionEmptyBase(t *testing.T) {
	t.Parallel()

	got := resolveVersion("", func(args ...string) (string, error) {
		return "", errors.New("no git")
	})
	require.Equal(t, "0.0.0", got)
}
