package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	apperrors "echoscribe/internal/app/errors"
	"echoscribe/internal/app/model"
)

// DefaultFileName is used when the destination hint is a directory.
const DefaultFileName = "speaker_transcriptions.json"

// Saver persists the aligned transcript of one run and returns the location
// of the stored artifact.
type Saver interface {
	Save(ctx context.Context, result model.ProcessingResult, destination string) (string, error)
}

// Document is the persisted JSON layout: the ordered aligned segments plus
// run-level metadata.
type Document struct {
	Source   string                 `json:"source"`
	Status   model.Status           `json:"status"`
	Segments []model.AlignedSegment `json:"segments"`
}

// JSONSaver writes one JSON document per run to the local filesystem.
//
// The write goes through a temp file in the destination directory followed by
// a rename, so a failed or interrupted run never leaves a partial artifact
// that could be mistaken for a finished transcript.
type JSONSaver struct{}

func NewJSONSaver() *JSONSaver {
	return &JSONSaver{}
}

func (s *JSONSaver) Save(ctx context.Context, result model.ProcessingResult, destination string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.ErrDeadlineExceeded, "persistence aborted")
	}

	target := destination
	if target == "" {
		target = DefaultFileName
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, DefaultFileName)
	} else if strings.HasSuffix(destination, string(os.PathSeparator)) {
		target = filepath.Join(destination, DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return "", apperrors.Wrapf(apperrors.ErrPersistence, "creating directory for %s", target)
	}

	data, err := json.MarshalIndent(Document{
		Source:   result.Source,
		Status:   result.Status,
		Segments: result.Segments,
	}, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrPersistence, "encoding transcript")
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".echoscribe-*.json")
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrPersistence, "creating temp file for %s", target)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", apperrors.Wrapf(apperrors.ErrPersistence, "writing %s", target)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.Wrapf(apperrors.ErrPersistence, "closing %s", target)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.Wrapf(apperrors.ErrPersistence, "moving transcript into place at %s", target)
	}
	return target, nil
}
