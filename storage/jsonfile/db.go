// Package jsonfile persists each collection as a pretty-printed JSON array in
// one file per resource under the configured data directory.
package jsonfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/escolaware/secretaria/core"
	"github.com/escolaware/secretaria/core/collection"
)

type DB struct {
	dir string
}

// Open ensures the data directory exists. Collection files themselves are
// created lazily on first save.
func Open(conf *core.Config) (*DB, error) {
	if err := os.MkdirAll(conf.DataDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating data dir %q", conf.DataDir)
	}
	return &DB{dir: conf.DataDir}, nil
}

// Collection returns the repository backed by <dir>/<name>.json.
func (db *DB) Collection(name string) collection.Repository {
	return &repository{path: filepath.Join(db.dir, name+".json")}
}
