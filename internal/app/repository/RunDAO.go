package repository

import (
	"echoscribe/internal/app/model"
)

// RunDAO records the outcome of every pipeline run. The run history backs the
// export command and lets batch processing skip sources that already
// completed successfully.
type RunDAO interface {
	Close() error

	// RecordRun appends one finished run.
	RecordRun(rec model.RunRecord) error

	// CheckIfProcessed returns the id of a previous successful run for the
	// source, or an error when none exists.
	CheckIfProcessed(source string) (int, error)

	// GetAll returns every recorded run, newest first.
	GetAll() ([]model.RunRecord, error)
}
