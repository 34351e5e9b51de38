// Package conf handles the configuration of the b3-2d tool. It defines the
// settings struct and functions to load settings from config files, the
// environment and command line flags.
package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// MeshSettings holds settings for the multi-section meshing run.
type MeshSettings struct {
	NumProcesses    int     // worker count, 0 selects min(NumCPU, sections)
	RotationAngle   float64 // rotation around z applied to the input mesh, degrees
	WebNCell        int     // cell count along each shear web
	WebPlyThickness float64 // constant web ply thickness
	NElem           int     // outline resampling target, 0 keeps input resolution
}

// PlotSettings holds settings for scalar field rendering.
type PlotSettings struct {
	Scalar string // cell data field to color by
	Width  int    // image width in pixels
	Height int    // image height in pixels
}

// AnbaSettings holds settings for the external ANBA4 solver integration.
type AnbaSettings struct {
	Env string // conda environment holding anba4-run
}

// OutputSettings holds output locations.
type OutputSettings struct {
	Dir    string // base directory for section subdirectories
	SQLite struct {
		Enabled bool   // record run results in a sqlite database
		Path    string // database path, relative paths resolve under Dir
	}
}

// Settings contains all runtime configuration.
type Settings struct {
	Debug   bool // enable debug output
	Verbose bool // enable verbose output

	Input struct {
		Path string // input VTP/VTK surface mesh
	}

	Output OutputSettings

	Mesh MeshSettings
	Plot PlotSettings
	Anba AnbaSettings

	MatDBPath string // optional material database file
	MatDB     MatDB  `mapstructure:"-" yaml:"-"` // loaded from MatDBPath
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into a Settings struct. Config file values
// are optional; defaults cover every field.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if settings.MatDBPath != "" {
		matdb, err := LoadMatDB(settings.MatDBPath)
		if err != nil {
			return nil, fmt.Errorf("error loading material database: %w", err)
		}
		settings.MatDB = matdb
	}

	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings
	return settingsInstance, nil
}

func initViper() error {
	viper.SetConfigName("b3-2d")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file is fine, defaults and flags cover everything.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// Setting returns the current settings instance, loading defaults if
// nothing has been loaded yet.
func Setting() *Settings {
	settingsMutex.RLock()
	if settingsInstance != nil {
		defer settingsMutex.RUnlock()
		return settingsInstance
	}
	settingsMutex.RUnlock()

	once.Do(func() {
		if _, err := Load(); err != nil {
			settingsMutex.Lock()
			settingsInstance = &Settings{}
			settingsMutex.Unlock()
		}
	})
	return settingsInstance
}

// GetDefaultConfigPaths returns the directories searched for a config file:
// the working directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	configDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(configDir, "b3-2d"))
	}
	return paths, nil
}

// ValidateMeshSettings checks that a mesh run can start with the given
// settings.
func ValidateMeshSettings(s *Settings) error {
	if s.Input.Path == "" {
		return fmt.Errorf("input mesh file is required")
	}
	info, err := os.Stat(s.Input.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("input mesh file %s does not exist", s.Input.Path)
		}
		return fmt.Errorf("error accessing input mesh file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, not a file", s.Input.Path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input mesh file %s is empty", s.Input.Path)
	}
	if s.Output.Dir == "" {
		return fmt.Errorf("output directory is required")
	}
	if s.Mesh.NumProcesses < 0 {
		return fmt.Errorf("number of processes must not be negative")
	}
	return nil
}
