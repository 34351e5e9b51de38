package anba

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/logging"
)

// singleThreadEnv pins the numerical backends of the solver to one thread
// per process; parallelism comes from running sections side by side.
var singleThreadEnv = []string{
	"OPENBLAS_NUM_THREADS=1",
	"MKL_NUM_THREADS=1",
	"OMP_NUM_THREADS=1",
	"CUDA_VISIBLE_DEVICES=-1",
}

// Runner executes the ANBA4 solver through a conda environment.
type Runner struct {
	CondaPath string
	Env       string
	Log       *slog.Logger
}

// NewRunner locates conda and returns a runner for the given environment.
func NewRunner(env string) (*Runner, error) {
	condaPath := os.Getenv("CONDA_EXE")
	if condaPath == "" {
		var err error
		condaPath, err = exec.LookPath("conda")
		if err != nil {
			return nil, errors.Newf("conda not found, set CONDA_EXE or add conda to PATH").
				Category(errors.CategorySolver).Build()
		}
	}
	return &Runner{
		CondaPath: condaPath,
		Env:       env,
		Log:       logging.ForService("anba"),
	}, nil
}

// CheckEnv verifies that the configured conda environment exists.
func (r *Runner) CheckEnv(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.CondaPath, "env", "list")
	out, err := cmd.Output()
	if err != nil {
		return errors.New(err).Category(errors.CategorySolver).
			Context("conda", r.CondaPath).Build()
	}
	if !envListed(string(out), r.Env) {
		return errors.Newf("conda environment %s not found", r.Env).
			Category(errors.CategorySolver).Build()
	}
	return nil
}

// envListed reports whether env appears as an environment name in the
// output of `conda env list`.
func envListed(listing, env string) bool {
	for _, line := range strings.Split(listing, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == env {
			return true
		}
	}
	return false
}

// InputFiles returns the sorted per-section solver inputs under outputDir.
func InputFiles(outputDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "section_*", "anba.json"))
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).Build()
	}
	sort.Strings(matches)
	return matches, nil
}

// RunAll runs the solver on every section_*/anba.json under outputDir. A
// failing section is logged and does not stop the remaining ones. The
// combined solver output is written to anba_solve.log in outputDir. The
// returned count is the number of sections that solved successfully.
func (r *Runner) RunAll(ctx context.Context, outputDir string) (int, error) {
	inputs, err := InputFiles(outputDir)
	if err != nil {
		return 0, err
	}
	if len(inputs) == 0 {
		return 0, errors.Newf("no anba.json files found under %s", outputDir).
			Category(errors.CategorySolver).Build()
	}

	var combined bytes.Buffer
	succeeded := 0
	for _, input := range inputs {
		fmt.Fprintf(&combined, "--- ANBA4 run for %s ---\n", input)
		if err := r.runOne(ctx, input, &combined); err != nil {
			r.Log.Error("ANBA4 failed", "input", input, "error", err)
			continue
		}
		r.Log.Info("ANBA4 completed", "input", input)
		succeeded++
	}

	logPath := filepath.Join(outputDir, "anba_solve.log")
	if err := os.WriteFile(logPath, combined.Bytes(), 0o644); err != nil {
		r.Log.Warn("failed to write solver log", "path", logPath, "error", err)
	}
	return succeeded, nil
}

func (r *Runner) runOne(ctx context.Context, input string, combined *bytes.Buffer) error {
	cmd := exec.CommandContext(ctx, r.CondaPath, "run", "-n", r.Env, "anba4-run", "-i", input)
	cmd.Env = append(os.Environ(), singleThreadEnv...)
	cmd.Stdout = combined
	cmd.Stderr = combined
	if err := cmd.Run(); err != nil {
		return errors.New(err).Category(errors.CategorySolver).FileContext(input).Build()
	}
	return nil
}
