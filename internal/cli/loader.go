package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dadda/internal/compiler"
	"github.com/roach88/dadda/internal/matrix"
)

// LoadMode controls how errors are handled during design loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the blocks compiled from a design.
type LoadResult struct {
	Blocks    []compiler.Block
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files read
}

// LoadError represents an error that occurred during design loading.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDesign loads a design from a single .cue file or from a directory
// holding one CUE package, and compiles its multiplier blocks.
// If mode is LoadModeFailFast, returns on the first block error.
// If mode is LoadModeCollectAll, collects all block errors.
//
// A nil result means nothing could be compiled at all.
func LoadDesign(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("design not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing design: %v", err)}}
	}

	var value cue.Value
	var fileCount int
	if info.IsDir() {
		value, fileCount, err = loadDir(path)
	} else {
		value, err = loadFile(path)
		fileCount = 1
	}
	if err != nil {
		return nil, []error{err}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: fileCount,
	}

	if !value.LookupPath(cue.ParsePath("multiplier")).Exists() {
		return result, []error{&LoadError{Code: ErrCodeNoBlocks, Message: "no multiplier blocks found in design"}}
	}

	blocks, errs := compiler.CompileAll(value)
	result.Blocks = blocks
	if len(errs) == 0 {
		return result, nil
	}

	loadErrs := make([]error, 0, len(errs))
	for _, err := range errs {
		loadErrs = append(loadErrs, convertCompileError(err))
		if mode == LoadModeFailFast {
			break
		}
	}
	return result, loadErrs
}

func loadFile(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("not a CUE file: %s", path)}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading design: %v", err)}
	}

	value := cuecontext.New().CompileBytes(src, cue.Filename(path))
	if err := value.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, nil
}

func loadDir(dir string) (cue.Value, int, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

// FindCUEFiles returns the .cue files directly inside dir, which is what
// a single CUE package instance is built from.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapErrorCode(err),
			Field:   compileErr.Field,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    MapErrorCode(err),
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path or record not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStoreFailed = "E008" // Synthesis log error
	ErrCodeNoBlocks    = "E009" // Design declares no multiplier blocks

	// Request validation errors
	ErrCodeInvalidWidth    = "E010" // INVALID_WIDTH
	ErrCodeInvalidConstant = "E011" // INVALID_CONSTANT
	ErrCodeInvalidMode     = "E012" // INVALID_MODE
	ErrCodeInvalidBlock    = "E013" // Malformed block (unknown or mistyped field)

	// Check failures
	ErrCodeMismatch   = "E020" // Netlist disagrees with the reference product
	ErrCodeTestFailed = "E021" // Scenario failures
)

// MapErrorCode maps a load, compile or validation error to an error code.
func MapErrorCode(err error) string {
	var me *matrix.Error
	if errors.As(err, &me) {
		switch me.Code {
		case matrix.ErrCodeInvalidWidth:
			return ErrCodeInvalidWidth
		case matrix.ErrCodeInvalidConstant:
			return ErrCodeInvalidConstant
		case matrix.ErrCodeInvalidMode:
			return ErrCodeInvalidMode
		}
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return ErrCodeInvalidBlock
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
