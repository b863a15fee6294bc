// Package compose loads Docker Compose projects and derives the container
// workloads the watchdog keeps an eye on.
package compose

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
)

// LoadOptions contains optional configuration for Load.
type LoadOptions struct {
	// Workdir sets the base directory for resolving relative paths.
	// If not specified, the directory containing the compose file is used.
	Workdir string

	// Environment sets environment variables that will be used for
	// variable interpolation in the compose file.
	Environment map[string]string

	// EnvFiles specifies .env files to load before parsing the compose file.
	// Variables from these files will be available for interpolation.
	EnvFiles []string
}

// Load loads a single compose project from the filesystem and returns a
// validated Project.
//
// The path argument can be:
//   - A file path: loads that specific compose file
//   - A directory: looks for compose.yaml, compose.yml, docker-compose.yaml,
//     or docker-compose.yml in that directory
//
// opts can be nil for default behavior.
func Load(ctx context.Context, path string, opts *LoadOptions) (*types.Project, error) {
	// Check context before doing any work
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if opts == nil {
		opts = &LoadOptions{}
	}

	pathInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fileNotFoundError{path: path, cause: err}
		}
		return nil, &pathError{path: path, cause: err}
	}

	var filePath string
	var workdir string

	if pathInfo.IsDir() {
		found, dir := findComposeFile(path)
		if found == "" {
			return nil, &fileNotFoundError{path: path, cause: errors.New("no compose file found")}
		}
		filePath = found
		workdir = dir
	} else {
		filePath = path
		workdir = filepath.Dir(path)
	}

	if opts.Workdir != "" {
		workdir = opts.Workdir
	}

	// Load environment from env files and options
	envMap := make(map[string]string)

	for _, envFile := range opts.EnvFiles {
		if err := loadEnvFile(envFile, envMap); err != nil {
			return nil, &pathError{path: envFile, cause: err}
		}
	}

	// Default .env file in the workdir, following compose behavior
	defaultEnvFile := filepath.Join(workdir, ".env")
	if _, err := os.Stat(defaultEnvFile); err == nil {
		_ = loadEnvFile(defaultEnvFile, envMap)
	}

	// Provided environment variables take precedence
	maps.Copy(envMap, opts.Environment)

	configDetails, err := loader.LoadConfigFiles(ctx, []string{filePath}, workdir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fileNotFoundError{path: filePath, cause: err}
		}
		if isYAMLError(err) {
			return nil, &invalidYAMLError{cause: err}
		}
		return nil, &pathError{path: filePath, cause: err}
	}

	if configDetails.Environment == nil {
		configDetails.Environment = make(types.Mapping)
	}
	for key, val := range envMap {
		if _, exists := configDetails.Environment[key]; !exists {
			configDetails.Environment[key] = val
		}
	}

	// Derive the project name from the directory before loading so that
	// compose-go resolves container names the same way docker compose does.
	projectName := filepath.Base(workdir)

	loaderOpts := []func(*loader.Options){
		func(o *loader.Options) {
			o.SkipValidation = true
			o.SetProjectName(projectName, false)
		},
	}

	project, err := loader.LoadWithContext(ctx, *configDetails, loaderOpts...)
	if err != nil {
		if isYAMLError(err) {
			return nil, &invalidYAMLError{cause: err}
		}
		return nil, &loaderError{cause: err}
	}

	if len(project.Services) == 0 {
		return nil, &validationError{message: "no services defined in compose file"}
	}

	return project, nil
}

// findComposeFile searches for a compose file in the given directory.
// It returns the full path to the first found compose file and the directory
// path, or empty strings if no compose file is found.
func findComposeFile(dir string) (string, string) {
	candidates := []string{
		"compose.yaml",
		"compose.yml",
		"docker-compose.yaml",
		"docker-compose.yml",
	}

	for _, name := range candidates {
		fullPath := filepath.Join(dir, name)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, dir
		}
	}

	return "", ""
}

// loadEnvFile loads key=value pairs from a .env file into the provided map.
func loadEnvFile(filePath string, envMap map[string]string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	lines := parseEnvLines(string(content))
	for _, line := range lines {
		if line == "" || line[0] == '#' {
			continue
		}
		var key, val string
		for i, char := range line {
			if char == '=' {
				key = line[:i]
				val = line[i+1:]
				break
			}
		}
		if key != "" {
			envMap[key] = val
		}
	}

	return nil
}

// parseEnvLines splits env file content into individual lines, handling basic cases.
func parseEnvLines(content string) []string {
	var lines []string
	var current string

	for _, char := range content {
		if char == '\n' {
			lines = append(lines, current)
			current = ""
		} else if char != '\r' {
			current += string(char)
		}
	}

	if current != "" {
		lines = append(lines, current)
	}

	return lines
}

// isYAMLError reports whether a loader error looks like a parse problem
// rather than a filesystem one.
func isYAMLError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, os.ErrNotExist) &&
		!errors.Is(err, os.ErrPermission)
}
