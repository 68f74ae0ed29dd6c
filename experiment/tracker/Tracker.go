// Package tracker defines Trackers, which track and save data
// generated during an experiment
package tracker

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/tabular/errs"
	ts "github.com/samuelfneumann/tabular/timestep"
)

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// SaveData gob-encodes data to filename
func SaveData(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return errs.Wrap(errs.Storage, err, "could not open save file %v",
			filename)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return errs.Wrap(errs.Storage, errors.Wrap(err, "encode"),
			"could not save data to %v", filename)
	}
	return nil
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errs.Wrap(errs.Storage, err, "could not open data "+
			"file %v", filename)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.Storage, errors.Wrap(err, "decode"),
			"could not decode data in %v", filename)
	}
	return data, nil
}
