package jsonfile

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/escolaware/secretaria/core/collection"
)

type repository struct {
	path string
}

var _ collection.Repository = (*repository)(nil)

// Load reads the whole collection. A missing or empty file is an empty
// collection; a file that exists but does not parse is an error, so a corrupt
// data source is never silently truncated.
func (r *repository) Load() ([]collection.Record, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []collection.Record{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", r.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []collection.Record{}, nil
	}

	var recs []collection.Record
	if err = json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", r.path)
	}
	return recs, nil
}

// Save serializes the entire collection, writing to a temp file first so a
// failed write never leaves a half-written collection behind.
func (r *repository) Save(recs []collection.Record) error {
	if recs == nil {
		recs = []collection.Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", r.path)
	}
	data = append(data, '\n')

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err = os.Rename(tmp, r.path); err != nil {
		return errors.Wrapf(err, "replacing %s", r.path)
	}
	return nil
}
