package pipeline

import (
	"context"
	"log/slog"
	"os"

	"github.com/wr1/b3-2d/internal/analysis"
	"github.com/wr1/b3-2d/internal/anba"
	"github.com/wr1/b3-2d/internal/bom"
	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/plot"
)

const (
	drapedInput   = "b3_drp/draped.vtk"
	meshOutputDir = "b3_2d"
)

// MeshStep turns the draped blade surface into per-section 2D meshes.
type MeshStep struct{}

func (s *MeshStep) Name() string          { return "mesh" }
func (s *MeshStep) InputFiles() []string  { return []string{drapedInput} }
func (s *MeshStep) OutputFiles() []string { return []string{meshOutputDir + "/"} }

func (s *MeshStep) Run(ctx context.Context, cfg *Config) error {
	settings := *conf.Setting()
	settings.Input.Path = cfg.resolve(drapedInput)
	settings.Output.Dir = cfg.resolve(meshOutputDir)
	if cfg.NumProcesses > 0 {
		settings.Mesh.NumProcesses = cfg.NumProcesses
	}
	if cfg.MatDBPath != "" {
		matdb, err := conf.LoadMatDB(cfg.MatDBPath)
		if err != nil {
			return err
		}
		settings.MatDB = matdb
	}

	if err := os.MkdirAll(settings.Output.Dir, 0o755); err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).
			FileContext(settings.Output.Dir).Build()
	}

	summary, err := analysis.RunMultiSection(ctx, &settings)
	if err != nil {
		return err
	}
	summary.WriteTable(os.Stdout)
	return nil
}

// AnbaStep runs the ANBA4 solver on every section's solver input.
type AnbaStep struct{}

func (s *AnbaStep) Name() string          { return "anba" }
func (s *AnbaStep) InputFiles() []string  { return []string{meshOutputDir + "/"} }
func (s *AnbaStep) OutputFiles() []string { return []string{meshOutputDir + "/anba_solve.log"} }

func (s *AnbaStep) Run(ctx context.Context, cfg *Config) error {
	env := cfg.AnbaEnv
	if env == "" {
		env = conf.Setting().Anba.Env
	}
	runner, err := anba.NewRunner(env)
	if err != nil {
		return err
	}
	if err := runner.CheckEnv(ctx); err != nil {
		return err
	}
	outputDir := cfg.resolve(meshOutputDir)
	succeeded, err := runner.RunAll(ctx, outputDir)
	if err != nil {
		return err
	}
	slog.Info("solver step finished", "succeeded", succeeded, "output_dir", outputDir)
	return nil
}

// PostStep renders the spanwise BOM and solver result charts plus the
// per-section solver overlays. Missing data for a chart is logged and
// skipped, not an error.
type PostStep struct{}

func (s *PostStep) Name() string         { return "post" }
func (s *PostStep) InputFiles() []string { return []string{meshOutputDir + "/"} }
func (s *PostStep) OutputFiles() []string {
	return []string{
		meshOutputDir + "/bom_spanwise.png",
		meshOutputDir + "/anba_spanwise.png",
	}
}

func (s *PostStep) Run(ctx context.Context, cfg *Config) error {
	outputDir := cfg.resolve(meshOutputDir)
	plotCfg := conf.Setting().Plot
	opts := plot.ChartOptions{Width: plotCfg.Width, Height: plotCfg.Height}

	boms, err := bom.LoadSpanwise(outputDir)
	if err != nil {
		return err
	}
	if len(boms) == 0 {
		slog.Warn("no BOM data found, skipping spanwise BOM plot", "output_dir", outputDir)
	} else {
		path := cfg.resolve(meshOutputDir + "/bom_spanwise.png")
		if err := plot.SaveSpanwiseBOM(boms, path, opts); err != nil {
			return err
		}
		slog.Info("wrote spanwise BOM plot", "path", path)
	}

	results, err := anba.LoadSpanwise(outputDir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		slog.Warn("no solver results found, skipping spanwise plot", "output_dir", outputDir)
	} else {
		path := cfg.resolve(meshOutputDir + "/anba_spanwise.png")
		if err := plot.SaveSpanwiseAnba(results, path, opts); err != nil {
			return err
		}
		slog.Info("wrote spanwise solver plot", "path", path)
	}

	meshOpts := plot.MeshOptions{Scalar: plotCfg.Scalar, Width: plotCfg.Width, Height: plotCfg.Height}
	written, err := plot.RenderSectionResults(outputDir, meshOpts)
	if err != nil {
		return err
	}
	if written > 0 {
		slog.Info("wrote per-section solver plots", "count", written, "output_dir", outputDir)
	}
	return nil
}
