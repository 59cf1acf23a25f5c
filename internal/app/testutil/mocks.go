// Package testutil provides deterministic stand-ins for the pipeline's
// collaborators so orchestration logic can be tested without engines,
// networks, or disks.
package testutil

import (
	"context"
	"sync"

	"echoscribe/internal/app/model"
	"echoscribe/internal/downloader"
)

// MockDownloader returns a fixed audio path or error.
type MockDownloader struct {
	mu        sync.Mutex
	AudioPath string
	Err       error
	calls     int
}

func NewMockDownloader(audioPath string) *MockDownloader {
	return &MockDownloader{AudioPath: audioPath}
}

func (m *MockDownloader) Download(ctx context.Context, source string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.AudioPath, nil
}

func (m *MockDownloader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Factory adapts a mock downloader to the orchestrator's factory signature.
func (m *MockDownloader) Factory(source, outputDir string) (downloader.Downloader, error) {
	return m, nil
}

// MockTranscriber returns fixed transcript segments, optionally blocking
// until the context is cancelled to simulate a slow engine.
type MockTranscriber struct {
	mu              sync.Mutex
	Segments        []model.TranscriptSegment
	Err             error
	BlockUntilClose bool
	calls           int
}

func NewMockTranscriber(segments ...model.TranscriptSegment) *MockTranscriber {
	return &MockTranscriber{Segments: segments}
}

func (m *MockTranscriber) WithError(err error) *MockTranscriber {
	m.Err = err
	return m
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSegment, error) {
	m.mu.Lock()
	m.calls++
	block := m.BlockUntilClose
	m.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Segments, nil
}

func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockDiarizer returns fixed speaker turns.
type MockDiarizer struct {
	mu              sync.Mutex
	Turns           []model.SpeakerTurn
	Err             error
	BlockUntilClose bool
	calls           int
}

func NewMockDiarizer(turns ...model.SpeakerTurn) *MockDiarizer {
	return &MockDiarizer{Turns: turns}
}

func (m *MockDiarizer) WithError(err error) *MockDiarizer {
	m.Err = err
	return m
}

func (m *MockDiarizer) Diarize(ctx context.Context, audioPath string) ([]model.SpeakerTurn, error) {
	m.mu.Lock()
	m.calls++
	block := m.BlockUntilClose
	m.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Turns, nil
}

func (m *MockDiarizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockSaver records what was persisted.
type MockSaver struct {
	mu       sync.Mutex
	Location string
	Err      error
	Saved    []model.ProcessingResult
}

func NewMockSaver(location string) *MockSaver {
	return &MockSaver{Location: location}
}

func (m *MockSaver) Save(ctx context.Context, result model.ProcessingResult, destination string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Saved = append(m.Saved, result)
	return m.Location, nil
}

func (m *MockSaver) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}

// MockRunDAO keeps run records in memory.
type MockRunDAO struct {
	mu        sync.Mutex
	Records   []model.RunRecord
	RecordErr error
	closed    bool
}

func NewMockRunDAO() *MockRunDAO {
	return &MockRunDAO{}
}

func (m *MockRunDAO) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockRunDAO) WasCloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockRunDAO) RecordRun(rec model.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return m.RecordErr
	}
	rec.ID = len(m.Records) + 1
	m.Records = append(m.Records, rec)
	return nil
}

func (m *MockRunDAO) CheckIfProcessed(source string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.Records {
		if rec.Source == source && rec.Status == string(model.StatusSuccess) {
			return rec.ID, nil
		}
	}
	return 0, errNotProcessed
}

func (m *MockRunDAO) GetAll() ([]model.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RunRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

type notProcessedError struct{}

func (notProcessedError) Error() string { return "source has no successful run" }

var errNotProcessed = notProcessedError{}
