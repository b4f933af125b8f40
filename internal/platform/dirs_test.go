package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataDirForLinuxXDG(t *testing.T) {
	t.Parallel()

	dir, err := DataDirFor("linux", "/home/asha", "/home/asha/.data")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/asha/.data", "vaani"), dir)
}

func TestDataDirForLinuxDefault(t *testing.T) {
	t.Parallel()

	dir, err := DataDirFor("linux", "/home/asha", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/home/asha", ".local", "share", "vaani"), dir)
}

func TestDataDirForDarwin(t *testing.T) {
	t.Parallel()

	dir, err := DataDirFor("darwin", "/Users/asha", "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/Users/asha", "Library", "Application Support", "vaani"), dir)
}

func TestDataDirForUnsupported(t *testing.T) {
	t.Parallel()

	_, err := DataDirFor("plan9", "/home/asha", "")
	require.Error(t, err)

	_, err = DataDirFor("linux", "", "")
	require.Error(t, err)
}

func TestResolveModelDirOverride(t *testing.T) {
	t.Parallel()

	dir, err := ResolveModelDir("/opt/models/")
	require.NoError(t, err)
	require.Equal(t, "/opt/models", dir)
}

func TestResolveUploadDirOverride(t *testing.T) {
	t.Parallel()

	dir, err := ResolveUploadDir("/var/lib/vaani")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/var/lib/vaani", "uploads"), dir)
}
