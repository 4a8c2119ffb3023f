package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/kiteco/govw/kite-golib/awsutil"
	"github.com/kiteco/govw/kite-golib/errors"
)

// NewReader opens a local or remote path for reading. If the path looks like
// "s3://bucket/path/to/object" then this will read an object from S3. Otherwise, this
// will read a path from the local filesystem.
func NewReader(path string) (io.ReadCloser, error) {
	if awsutil.IsS3URI(path) {
		return awsutil.NewS3Reader(path)
	}
	return os.Open(path)
}

// CopyToLocal copies the contents of src, which may be remote, into the local file dst,
// replacing anything already there. It returns the number of bytes copied.
func CopyToLocal(src, dst string) (n int64, err error) {
	r, err := NewReader(src)
	if err != nil {
		return 0, errors.Wrapf(err, "error opening %s", src)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, err
	}
	w, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer errors.Defer(&err, w.Close)

	n, err = io.Copy(w, r)
	if err != nil {
		return n, errors.Wrapf(err, "error copying %s to %s", src, dst)
	}
	return n, nil
}
