package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/crm"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/logging"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/source"
	"github.com/google/uuid"
)

// ErrImportInProgress is returned when a run is requested while another
// one is still executing. One run at a time keeps result ordering
// deterministic and respects the CRM's implicit rate limits.
var ErrImportInProgress = errors.New("an import run is already in progress")

// ErrUnknownRun is returned when a run ID is not tracked by the service.
var ErrUnknownRun = errors.New("unknown run")

// ItemCreator issues the per-row create call. *crm.Client implements it.
type ItemCreator interface {
	AddItem(ctx context.Context, entityTypeID int, fields map[string]any) (int64, error)
}

// Recorder persists a finished run's result. Optional; a nil Recorder
// disables history.
type Recorder interface {
	RecordRun(ctx context.Context, result *RunResult) error
}

// RunStatus is the lifecycle state of an asynchronous run.
type RunStatus string

const (
	StatusRunning  RunStatus = "running"
	StatusComplete RunStatus = "complete"
)

// Outcome is the per-row result, in source order. Item holds the payload
// that was submitted, or the original record when the row failed before a
// payload existed.
type Outcome struct {
	Success bool           `json:"success"`
	ID      int64          `json:"id,omitempty"`
	Error   string         `json:"error,omitempty"`
	Line    int            `json:"line"`
	Item    map[string]any `json:"item"`
}

// RunResult is the aggregate of one import run: ordered outcomes plus
// success/failure tallies. Outcomes are never filtered; callers format
// them for display.
type RunResult struct {
	RunID        string        `json:"runId"`
	EntityTypeID int           `json:"entityTypeId"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	Outcomes     []Outcome     `json:"outcomes"`
	StartedAt    time.Time     `json:"startedAt"`
	Duration     time.Duration `json:"duration"`
}

// Service drives import runs. At most one run executes at a time,
// enforced by a single-slot guard.
type Service struct {
	creator  ItemCreator
	files    *FileIngestor
	recorder Recorder
	guard    chan struct{}

	mu   sync.RWMutex
	runs map[string]*activeRun
}

type activeRun struct {
	ID     string
	Status RunStatus
	Result *RunResult
	Done   chan struct{}
}

// NewService creates a Service. recorder may be nil.
func NewService(creator ItemCreator, files *FileIngestor, recorder Recorder) *Service {
	return &Service{
		creator:  creator,
		files:    files,
		recorder: recorder,
		guard:    make(chan struct{}, 1),
		runs:     make(map[string]*activeRun),
	}
}

// InProgress reports whether a run is currently executing.
func (s *Service) InProgress() bool {
	return len(s.guard) > 0
}

func (s *Service) acquire() error {
	select {
	case s.guard <- struct{}{}:
		return nil
	default:
		return ErrImportInProgress
	}
}

func (s *Service) release() {
	select {
	case <-s.guard:
	default:
	}
}

// Run executes an import synchronously and returns its result. Mapping
// resolution happens first; its errors reject the run before any row is
// touched. After that point nothing fails the run as a whole.
func (s *Service) Run(ctx context.Context, entityTypeID int, fields []crm.FieldDefinition, pairs []MappingPair, table *source.Table) (*RunResult, error) {
	mapping, err := ResolveMapping(pairs, fields)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	result := s.execute(ctx, uuid.New().String(), entityTypeID, fields, mapping, table)
	s.record(ctx, result)
	return result, nil
}

// StartRun begins an asynchronous run and returns its ID immediately.
// The run executes in the background detached from the caller's request
// context; poll GetRun for status and result.
func (s *Service) StartRun(ctx context.Context, entityTypeID int, fields []crm.FieldDefinition, pairs []MappingPair, table *source.Table) (string, error) {
	mapping, err := ResolveMapping(pairs, fields)
	if err != nil {
		return "", err
	}
	if err := s.acquire(); err != nil {
		return "", err
	}

	run := &activeRun{
		ID:     uuid.New().String(),
		Status: StatusRunning,
		Done:   make(chan struct{}),
	}
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	go func() {
		defer s.release()
		runCtx := context.WithoutCancel(ctx)
		result := s.execute(runCtx, run.ID, entityTypeID, fields, mapping, table)
		s.record(runCtx, result)

		s.mu.Lock()
		run.Status = StatusComplete
		run.Result = result
		s.mu.Unlock()
		close(run.Done)
	}()

	return run.ID, nil
}

// GetRun returns the status of a tracked run and, once complete, its
// result.
func (s *Service) GetRun(runID string) (RunStatus, *RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return "", nil, ErrUnknownRun
	}
	return run.Status, run.Result, nil
}

// execute processes rows strictly in source order, one create call at a
// time. Rows whose conversion produced problems are finalized without
// calling the CRM; everything else is submitted and the response captured
// either way.
func (s *Service) execute(ctx context.Context, runID string, entityTypeID int, fields []crm.FieldDefinition, mapping FieldMapping, table *source.Table) *RunResult {
	start := time.Now()
	logger := logging.WithFields(ctx, "run_id", runID, "entity_type", entityTypeID)
	logger.Info("import run started", "rows", len(table.Records), "mapped_fields", len(mapping))

	conv := NewConverter(fields, mapping, s.files)
	result := &RunResult{
		RunID:        runID,
		EntityTypeID: entityTypeID,
		StartedAt:    start,
		Outcomes:     make([]Outcome, 0, len(table.Records)),
	}

	for i, rec := range table.Records {
		line := i + 2 // 1-indexed, after the header row

		payload, problems := conv.Convert(ctx, rec)

		var outcome Outcome
		switch {
		case len(problems) > 0:
			outcome = Outcome{Line: line, Error: strings.Join(problems, "; "), Item: recordItem(rec)}
		case len(payload) == 0:
			outcome = Outcome{Line: line, Error: "no valid fields mapped for this row", Item: recordItem(rec)}
		default:
			id, err := s.creator.AddItem(ctx, entityTypeID, payload)
			if err != nil {
				outcome = Outcome{Line: line, Error: err.Error(), Item: payload}
			} else {
				outcome = Outcome{Success: true, ID: id, Line: line, Item: payload}
			}
		}

		if outcome.Success {
			result.Succeeded++
		} else {
			result.Failed++
			logger.Debug("row failed", "line", line, "error", outcome.Error)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Duration = time.Since(start)
	logger.Info("import run finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result
}

func (s *Service) record(ctx context.Context, result *RunResult) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordRun(ctx, result); err != nil {
		logging.FromContext(ctx).Error("record run history", "run_id", result.RunID, "error", err)
	}
}
