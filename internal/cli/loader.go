package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/autotrace/internal/harness"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeScanError       = "E002" // Directory scan error
	ErrCodeNoFiles         = "E003" // No scenario files found
	ErrCodeUnsupportedFile = "E004" // Unknown scenario file extension
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeBuildFailed     = "E006" // CUE evaluation or decoding failed
	ErrCodeInvalidScenario = "E007" // Scenario failed to parse or validate
	ErrCodeRunFailed       = "E008" // Scenario could not be executed
	ErrCodeWriteFailed     = "E009" // File write error
)

// LoadError represents an error that occurred while loading a scenario.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// scenarioExts lists the file extensions LoadScenarioFile understands.
var scenarioExts = []string{".yaml", ".yml", ".cue"}

// LoadScenarioFile loads a scenario from YAML or CUE, chosen by extension.
//
// CUE files must evaluate to a single concrete struct with the scenario
// fields; it is decoded into the same harness.Scenario as YAML and then
// validated the same way.
func LoadScenarioFile(path string) (*harness.Scenario, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "scenario file not found", Path: path}
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		s, err := harness.LoadScenario(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidScenario, Message: err.Error(), Path: path}
		}
		return s, nil
	case ".cue":
		return loadCUEScenario(path)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupportedFile,
			Message: fmt.Sprintf("unsupported scenario file type (want one of %v)", scenarioExts),
			Path:    path,
		}
	}
}

func loadCUEScenario(path string) (*harness.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), Path: path}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(path, "compiling CUE", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(path, "scenario must be concrete", err)
	}

	var s harness.Scenario
	if err := v.Decode(&s); err != nil {
		return nil, cueLoadError(path, "decoding scenario", err)
	}

	if err := harness.ValidateScenario(&s); err != nil {
		return nil, &LoadError{
			Code:    ErrCodeInvalidScenario,
			Message: fmt.Sprintf("invalid scenario: %v", err),
			Path:    path,
		}
	}
	return &s, nil
}

// cueLoadError converts a CUE error, keeping the first reported position.
func cueLoadError(path, context string, err error) *LoadError {
	le := &LoadError{
		Code:    ErrCodeBuildFailed,
		Message: fmt.Sprintf("%s: %v", context, err),
		Path:    path,
	}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Pos = errs[0].Position()
	}
	return le
}

// FindScenarioFiles returns the scenario files under dir, sorted by path.
// filter, if set, is a glob matched against the file name without its
// extension.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if !isScenarioExt(ext) {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	sort.Strings(files)
	return files, err
}

func isScenarioExt(ext string) bool {
	for _, e := range scenarioExts {
		if e == ext {
			return true
		}
	}
	return false
}
