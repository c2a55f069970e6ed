package stream

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeTempZip(t *testing.T, members map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tapes.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestSplitArchivePath(t *testing.T) {
	testCases := []struct {
		path    string
		archive string
		member  string
		ok      bool
	}{
		{"mission.zip:/vl_0387.021", "mission.zip", "vl_0387.021", true},
		{"dir/Mission.ZIP:/sub/vl_0387.021", "dir/Mission.ZIP", "sub/vl_0387.021", true},
		{"plain/vl_0387.021", "", "", false},
		{"mission.zip", "", "", false},
		{"mission.zip:/", "", "", false},
		{"mission.tar:/member", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			archive, member, ok := SplitArchivePath(tc.path)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.archive, archive)
			assert.Equal(t, tc.member, member)
		})
	}
}

func TestOpenLooseFile(t *testing.T) {
	path := writeTempFile(t, "vl_0001.001", []byte("0123456789"))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, int64(10), r.Size())
	assert.True(t, r.Good())

	buf := make([]byte, 4)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(buf))

	pos, err := r.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	_, err = r.Seek(2, io.SeekStart)
	require.NoError(t, err)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(buf))
}

func TestOpenArchiveMember(t *testing.T) {
	archive := writeTempZip(t, map[string][]byte{
		"vl_0387.021": []byte("band-a"),
		"vl_0387.022": []byte("band-b"),
	})

	r, err := Open(archive + ":/vl_0387.022")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, int64(6), r.Size())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "band-b", string(data))

	// Seeking works on inflated members.
	_, err = r.Seek(5, io.SeekStart)
	require.NoError(t, err)
	b := make([]byte, 1)
	_, err = io.ReadFull(r, b)
	require.NoError(t, err)
	assert.Equal(t, byte('b'), b[0])
}

func TestOpenArchiveMemberMissing(t *testing.T) {
	archive := writeTempZip(t, map[string][]byte{"vl_0387.021": []byte("x")})
	_, err := Open(archive + ":/vl_9999.001")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestGoodTurnsFalseAtEOF(t *testing.T) {
	path := writeTempFile(t, "vl_0001.001", []byte("ab"))
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = io.ReadAll(r)
	require.NoError(t, err)

	// Drain past EOF.
	_, err = r.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, r.Good())

	// A rewind clears the EOF condition.
	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.True(t, r.Good())
}

func TestClonePreservesPosition(t *testing.T) {
	path := writeTempFile(t, "vl_0001.001", []byte("0123456789"))
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Seek(7, io.SeekStart)
	require.NoError(t, err)

	dup, err := r.Clone()
	require.NoError(t, err)
	defer dup.Close()

	buf := make([]byte, 3)
	_, err = io.ReadFull(dup, buf)
	require.NoError(t, err)
	assert.Equal(t, "789", string(buf))

	// Original handle position is unchanged by the clone's reads.
	pos, err := r.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)
}
