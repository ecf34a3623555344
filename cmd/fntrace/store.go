package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/randalmurphal/fnevents/pkg/fnevents/recording"
)

// openRecording opens an existing recording database. A missing path is a
// command error rather than a new empty database.
func openRecording(path string) (*recording.SQLiteStore, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, commandError(fmt.Errorf("recording database %s does not exist", path))
		}
		return nil, commandError(err)
	}
	store, err := recording.NewSQLiteStore(path)
	if err != nil {
		return nil, commandError(err)
	}
	return store, nil
}
