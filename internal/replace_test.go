package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFile_HelloWorld(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.txt", []byte("hello world"), 0640))

	n, err := replaceFile(fsys, "/a.txt", "world", "earth", false, nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := afero.ReadFile(fsys, "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello earth", string(got))

	info, err := fsys.Stat("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())

	// no temp files left behind
	entries, err := afero.ReadDir(fsys, "/")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReplaceFile_NonOverlappingLeftToRight(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.txt", []byte("aaaa aa a"), 0644))

	n, err := replaceFile(fsys, "/a.txt", "aa", "b", false, nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	got, _ := afero.ReadFile(fsys, "/a.txt")
	assert.Equal(t, "bb b a", string(got))
}

// Round trip holds when neither string contains the other and the
// destination does not already occur in the file.
func TestReplaceFile_RoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	orig := "import foo\nfoo.bar(foo)\n# foo\n"
	require.NoError(t, afero.WriteFile(fsys, "/m.py", []byte(orig), 0644))

	n, err := replaceFile(fsys, "/m.py", "foo", "qux", false, nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = replaceFile(fsys, "/m.py", "qux", "foo", false, nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got, _ := afero.ReadFile(fsys, "/m.py")
	assert.Equal(t, orig, string(got))
}

func TestReplaceFile_NoOccurrencesLeavesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.txt", []byte("nothing here"), 0644))
	before, _ := fsys.Stat("/a.txt")

	n, err := replaceFile(fsys, "/a.txt", "world", "earth", false, nil, 0, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	after, _ := fsys.Stat("/a.txt")
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestReplaceFile_DryRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.txt", []byte("x world world"), 0644))

	n, err := replaceFile(fsys, "/a.txt", "world", "earth", true, nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	got, _ := afero.ReadFile(fsys, "/a.txt")
	assert.Equal(t, "x world world", string(got))
}

func TestReplaceFile_VerboseReportsOriginalLines(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.txt", []byte("one\nhello world\nthree\n"), 0644))

	var recs []MatchRecord
	m := NewMatcher([]string{"world"}, false)
	_, err := replaceFile(fsys, "/a.txt", "world", "earth", false, m, 1, func(r MatchRecord) {
		recs = append(recs, r)
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "hello world", recs[0].Line)
	assert.Equal(t, 2, recs[0].LineNumber)
	assert.Len(t, recs[0].Before, 1)
	assert.Len(t, recs[0].After, 1)
}

func TestReplaceFile_WriteFailureKeepsOriginal(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/a.txt", []byte("hello world"), 0644))
	ro := afero.NewReadOnlyFs(base)

	n, err := replaceFile(ro, "/a.txt", "world", "earth", false, nil, 0, nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrFileWrite), "got %v", err)
	assert.Zero(t, n)

	got, _ := afero.ReadFile(base, "/a.txt")
	assert.Equal(t, "hello world", string(got))
}

func TestReplaceFile_BinarySkipped(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/a.dat", []byte("world\x00world"), 0644))

	n, err := replaceFile(fsys, "/a.dat", "world", "earth", false, nil, 0, nil)
	assert.True(t, IsCode(err, ErrNotTextFile))
	assert.Zero(t, n)
	got, _ := afero.ReadFile(fsys, "/a.dat")
	assert.Equal(t, "world\x00world", string(got))
}

func TestAtomicWriteFile_OsFs(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(p, []byte("old"), 0600))

	require.NoError(t, atomicWriteFile(afero.NewOsFs(), p, []byte("new")))
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
