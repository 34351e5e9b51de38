// Package analysis fans a draped blade surface mesh out over its spanwise
// sections: each section is extracted, meshed, and written to its own
// subdirectory by a bounded pool of workers.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/datastore"
	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/vtk"
)

// SectionOutcome is the result of processing one section.
type SectionOutcome struct {
	SectionID    int
	Success      bool
	Err          error
	OutputDir    string
	CreatedFiles []string
	Elapsed      time.Duration
}

// RunSummary collects the outcome of a whole multi-section run.
type RunSummary struct {
	RunID     string
	Input     string
	OutputDir string
	Workers   int
	Started   time.Time
	Finished  time.Time
	Sections  []SectionOutcome
}

// NumFailed counts the sections that did not complete.
func (r *RunSummary) NumFailed() int {
	failed := 0
	for i := range r.Sections {
		if !r.Sections[i].Success {
			failed++
		}
	}
	return failed
}

// RunMultiSection meshes every section found in the input mesh. The input is
// read once to enumerate section ids, then each worker re-reads it so no
// mesh state is shared between goroutines. A failing section is recorded in
// its outcome and never aborts the run; run-level failures (unreadable
// input, missing section_id attribute, unwritable output directory) do.
func RunMultiSection(ctx context.Context, settings *conf.Settings) (*RunSummary, error) {
	if err := conf.ValidateMeshSettings(settings); err != nil {
		return nil, errors.New(err).Category(errors.CategoryValidation).Build()
	}

	sectionIDs, err := enumerateSections(settings.Input.Path)
	if err != nil {
		return nil, err
	}

	workers := settings.Mesh.NumProcesses
	if workers <= 0 {
		workers = min(runtime.NumCPU(), len(sectionIDs))
	}
	if workers > len(sectionIDs) {
		workers = len(sectionIDs)
	}

	if err := os.MkdirAll(settings.Output.Dir, 0o755); err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).
			FileContext(settings.Output.Dir).Build()
	}

	summary := &RunSummary{
		RunID:     uuid.New().String(),
		Input:     settings.Input.Path,
		OutputDir: settings.Output.Dir,
		Workers:   workers,
		Started:   time.Now(),
	}
	slog.Info("starting multi-section run",
		"run_id", summary.RunID,
		"input", summary.Input,
		"sections", len(sectionIDs),
		"workers", workers)

	jobs := make(chan int)
	results := make(chan SectionOutcome, len(sectionIDs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sectionID := range jobs {
				results <- processSection(ctx, settings, sectionID)
			}
		}()
	}

dispatch:
	for _, sectionID := range sectionIDs {
		select {
		case <-ctx.Done():
			// Stop handing out new sections; running ones finish.
			break dispatch
		case jobs <- sectionID:
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	for outcome := range results {
		summary.Sections = append(summary.Sections, outcome)
	}
	sort.Slice(summary.Sections, func(i, j int) bool {
		return summary.Sections[i].SectionID < summary.Sections[j].SectionID
	})
	summary.Finished = time.Now()

	persistRun(settings, summary)

	slog.Info("multi-section run finished",
		"run_id", summary.RunID,
		"sections", len(summary.Sections),
		"failed", summary.NumFailed(),
		"elapsed", summary.Finished.Sub(summary.Started).Round(time.Millisecond))
	return summary, ctx.Err()
}

// enumerateSections reads the input once and returns its sorted unique
// section ids.
func enumerateSections(path string) ([]int, error) {
	m, err := vtk.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values, err := m.UniqueCellValues("section_id")
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryValidation).
			FileContext(path).Build()
	}
	ids := make([]int, len(values))
	for i, v := range values {
		ids[i] = int(v)
	}
	sort.Ints(ids)
	return ids, nil
}

// persistRun records the run in the SQLite store. Best effort: failures are
// logged and otherwise ignored.
func persistRun(settings *conf.Settings, summary *RunSummary) {
	if !settings.Output.SQLite.Enabled {
		return
	}
	store, err := datastore.Open(settings.Output.SQLite.Path, settings.Output.Dir, settings.Debug)
	if err != nil {
		slog.Warn("run history store unavailable", "error", err)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close run history store", "error", err)
		}
	}()

	run := &datastore.Run{
		ID:          summary.RunID,
		InputPath:   summary.Input,
		OutputDir:   summary.OutputDir,
		Workers:     summary.Workers,
		NumSections: len(summary.Sections),
		NumFailed:   summary.NumFailed(),
		StartedAt:   summary.Started,
		FinishedAt:  summary.Finished,
	}
	records := make([]datastore.SectionRecord, 0, len(summary.Sections))
	for i := range summary.Sections {
		outcome := &summary.Sections[i]
		record := datastore.SectionRecord{
			SectionID: outcome.SectionID,
			Success:   outcome.Success,
			OutputDir: outcome.OutputDir,
			ElapsedMS: outcome.Elapsed.Milliseconds(),
		}
		if outcome.Err != nil {
			record.Error = outcome.Err.Error()
		}
		records = append(records, record)
	}
	if err := store.SaveRun(run, records); err != nil {
		slog.Warn("failed to persist run history", "run_id", summary.RunID, "error", err)
	}
}

func sectionDirName(sectionID int) string {
	return fmt.Sprintf("section_%d", sectionID)
}
