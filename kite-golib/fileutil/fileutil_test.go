package fileutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyToLocal(t *testing.T) {
	dir, err := ioutil.TempDir("", "fileutil")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "in.vw")
	contents := "1 1.0 a|f x\n1.0 b|f x\n"
	require.NoError(t, ioutil.WriteFile(src, []byte(contents), 0644))

	dst := filepath.Join(dir, "nested", "vw.data")

	n, err := CopyToLocal(src, dst)
	require.NoError(t, err)
	assert.EqualValues(t, len(contents), n)

	buf, err := ioutil.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, contents, string(buf))

	// copying again replaces rather than appends
	require.NoError(t, ioutil.WriteFile(dst, []byte("stale line that is longer than the source\n"), 0644))
	_, err = CopyToLocal(src, dst)
	require.NoError(t, err)
	buf, err = ioutil.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, contents, string(buf))
}

func TestCopyToLocalMissing(t *testing.T) {
	_, err := CopyToLocal("/definitely/not/here.vw", filepath.Join(os.TempDir(), "never.vw"))
	assert.Error(t, err)
}
