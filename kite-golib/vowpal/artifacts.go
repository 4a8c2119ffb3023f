package vowpal

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kiteco/govw/kite-golib/errors"
)

// Artifacts holds the scratch files shared with vw.
type Artifacts struct {
	Cache string
	Preds string
	Data  string
	Log   string
}

// DeriveArtifacts substitutes each artifact suffix into prefix, which must
// contain exactly one %s, e.g. "/tmp/model-%s.vw".
func DeriveArtifacts(prefix string) (Artifacts, error) {
	if strings.Count(prefix, "%s") != 1 {
		return Artifacts{}, ErrBadPrefix
	}
	sub := func(suffix string) string {
		return strings.Replace(prefix, "%s", suffix, 1)
	}
	return Artifacts{
		Cache: sub("cache"),
		Preds: sub("preds"),
		Data:  sub("data"),
		Log:   sub("log"),
	}, nil
}

// All returns every artifact path.
func (a Artifacts) All() []string {
	return []string{a.Cache, a.Preds, a.Data, a.Log}
}

// reset removes any regular file left at an artifact path and makes sure the
// parent directories exist.
func (a Artifacts) reset() error {
	for _, path := range a.All() {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Wrapf(err, "error creating directory for %s", path)
		}
		fi, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			continue
		case err != nil:
			return errors.Wrapf(err, "error checking %s", path)
		case !fi.Mode().IsRegular():
			continue
		}
		if err := os.Remove(path); err != nil {
			return errors.Wrapf(err, "error removing stale %s", path)
		}
	}
	return nil
}

// Remove deletes every artifact, ignoring ones that do not exist.
func (a Artifacts) Remove() error {
	var err error
	for _, path := range a.All() {
		if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
			err = errors.Combine(err, rerr)
		}
	}
	return err
}
