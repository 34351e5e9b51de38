package analysis

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wr1/b3-2d/internal/anba"
	"github.com/wr1/b3-2d/internal/bom"
	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/foil"
	"github.com/wr1/b3-2d/internal/logging"
	"github.com/wr1/b3-2d/internal/section"
	"github.com/wr1/b3-2d/internal/vtk"
)

// Per-section artifact names under section_<i>/.
const (
	fileMesh    = "output.vtk"
	filePickle  = "mesh.pck"
	fileAnba    = "anba.json"
	fileBOM     = "bom.json"
	fileSectLog = "2dmesh.log"
)

// processSection handles one section end to end: its own subdirectory, its
// own log file, its own read of the input mesh. Any error short-circuits
// into the outcome.
func processSection(ctx context.Context, settings *conf.Settings, sectionID int) SectionOutcome {
	start := time.Now()
	outcome := SectionOutcome{
		SectionID: sectionID,
		OutputDir: filepath.Join(settings.Output.Dir, sectionDirName(sectionID)),
	}
	fail := func(err error) SectionOutcome {
		outcome.Err = err
		outcome.Elapsed = time.Since(start)
		slog.Error("section failed", "section_id", sectionID, "error", err)
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail(errors.New(err).Category(errors.CategoryWorker).
			Context("section_id", sectionID).Build())
	}
	if err := os.MkdirAll(outcome.OutputDir, 0o755); err != nil {
		return fail(errors.New(err).Category(errors.CategoryFileIO).
			FileContext(outcome.OutputDir).Build())
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	logPath := filepath.Join(outcome.OutputDir, fileSectLog)
	log, closeLog, err := logging.NewFileLogger(logPath, "section", level)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := closeLog(); err != nil {
			slog.Warn("failed to close section log", "section_id", sectionID, "error", err)
		}
	}()
	outcome.CreatedFiles = append(outcome.CreatedFiles, logPath)
	log = log.With("section_id", sectionID)
	log.Info("processing section", "input", settings.Input.Path)

	input, err := vtk.ReadFile(settings.Input.Path)
	if err != nil {
		log.Error("failed to read input mesh", "error", err)
		return fail(err)
	}
	input.RotateZ(settings.Mesh.RotationAngle)

	ex, err := section.Extract(input, sectionID)
	if err != nil {
		log.Error("section extraction failed", "error", err)
		return fail(err)
	}
	log.Info("extracted section geometry",
		"outline_points", len(ex.Outline),
		"webs", len(ex.Webs),
		"ply_fields", len(ex.PlyThickness))

	meshPath := filepath.Join(outcome.OutputDir, fileMesh)
	airfoil := section.BuildAirfoilMesh(ex, &settings.Mesh, meshPath)
	mesh, err := foil.Generate(airfoil)
	if err != nil {
		log.Error("mesh generation failed", "error", err)
		return fail(err)
	}
	outcome.CreatedFiles = append(outcome.CreatedFiles, meshPath)
	log.Info("generated section mesh", "points", mesh.NumPoints(), "cells", mesh.NumCells())

	picklePath := filepath.Join(outcome.OutputDir, filePickle)
	if err := vtk.WritePickle(mesh, picklePath); err != nil {
		log.Error("failed to write mesh pickle", "error", err)
		return fail(err)
	}
	outcome.CreatedFiles = append(outcome.CreatedFiles, picklePath)

	export, err := anba.NewExport(mesh, settings.MatDB)
	if err != nil {
		log.Error("solver export failed", "error", err)
		return fail(err)
	}
	anbaPath := filepath.Join(outcome.OutputDir, fileAnba)
	if err := export.Write(anbaPath); err != nil {
		log.Error("failed to write solver input", "error", err)
		return fail(err)
	}
	outcome.CreatedFiles = append(outcome.CreatedFiles, anbaPath)

	if b := bom.Compute(mesh, settings.MatDB); b != nil {
		bomPath := filepath.Join(outcome.OutputDir, fileBOM)
		if err := bom.Write(b, bomPath); err != nil {
			log.Error("failed to write bill of materials", "error", err)
			return fail(err)
		}
		outcome.CreatedFiles = append(outcome.CreatedFiles, bomPath)
		log.Info("computed bill of materials", "total_area", b.TotalArea)
	}

	outcome.Success = true
	outcome.Elapsed = time.Since(start)
	log.Info("section completed", "elapsed", outcome.Elapsed.Round(time.Millisecond),
		"files", len(outcome.CreatedFiles))
	return outcome
}
