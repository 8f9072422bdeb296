package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dadda/internal/compiler"
	"github.com/roach88/dadda/internal/matrix"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Design is a CUE design file holding the block under test. Relative
	// paths are resolved against the scenario file's directory.
	Design string `yaml:"design,omitempty"`

	// Block names the multiplier block in Design. Defaults to Name.
	Block string `yaml:"block,omitempty"`

	// Request describes the block inline, as an alternative to Design.
	Request *RequestSpec `yaml:"request,omitempty"`

	// Verify selects the numeric checks run against the netlist.
	Verify Verification `yaml:"verify,omitempty"`

	// Cases pin specific operands to expected products.
	Cases []Case `yaml:"cases,omitempty"`

	// Assertions validate the synthesized structure.
	Assertions []Assertion `yaml:"assertions"`
}

// RequestSpec is the inline YAML form of a multiplier block. Field names
// match the CUE design format.
type RequestSpec struct {
	IntBits         int      `yaml:"int_bits"`
	FracBits        int      `yaml:"frac_bits,omitempty"`
	Mode            string   `yaml:"mode,omitempty"`
	Coefficient     *float64 `yaml:"coefficient,omitempty"`
	CoefficientBits *uint64  `yaml:"coefficient_bits,omitempty"`
	AddendBits      uint64   `yaml:"addend_bits,omitempty"`
	OffsetWidth     int      `yaml:"offset_width,omitempty"`
}

// ToRequest converts the inline block to a matrix.Request named name. Defaults
// follow the design format; validation is left to synthesis.
func (s *RequestSpec) ToRequest(name string) (matrix.Request, error) {
	req := matrix.Request{
		Name:        name,
		IntBits:     s.IntBits,
		FracBits:    s.FracBits,
		Addend:      s.AddendBits,
		OffsetWidth: s.OffsetWidth,
	}
	if s.Mode != "" {
		mode, err := matrix.ParseMode(s.Mode)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}
	if req.Mode == matrix.Accumulate && req.OffsetWidth == 0 {
		req.OffsetWidth = compiler.DefaultOffsetWidth(req)
	}
	switch {
	case s.Coefficient != nil && s.CoefficientBits != nil:
		return req, fmt.Errorf("set either coefficient or coefficient_bits, not both")
	case s.Coefficient != nil:
		enc, err := matrix.EncodeFixed(*s.Coefficient, s.FracBits)
		if err != nil {
			return req, err
		}
		req.Constant = enc
	case s.CoefficientBits != nil:
		req.Constant = *s.CoefficientBits
	}
	return req, nil
}

// Verification selects numeric checks. Exhaustive enumerates every input
// assignment; Samples draws that many assignments from a sampler seeded
// with Seed.
type Verification struct {
	Exhaustive bool   `yaml:"exhaustive,omitempty"`
	Samples    int    `yaml:"samples,omitempty"`
	Seed       uint64 `yaml:"seed,omitempty"`
}

// Case is one pinned operand assignment and the product it must yield.
type Case struct {
	A       uint64 `yaml:"a"`
	B       uint64 `yaml:"b,omitempty"`
	Offset  uint64 `yaml:"offset,omitempty"`
	Product uint64 `yaml:"product"`
}

// Assertion validates the synthesized structure.
type Assertion struct {
	// Type specifies the assertion type:
	// - "cell_counts": exact half and full adder counts
	// - "targets": the applied height targets, largest first
	// - "ports": port widths
	// - "fingerprint": the netlist's content address
	// - "rejected": synthesis must fail with Code
	Type string `yaml:"type"`

	HalfAdders  *int   `yaml:"half_adders,omitempty"`
	FullAdders  *int   `yaml:"full_adders,omitempty"`
	Targets     []int  `yaml:"targets,omitempty"`
	Ports       *Ports `yaml:"ports,omitempty"`
	Fingerprint string `yaml:"fingerprint,omitempty"`
	Code        string `yaml:"code,omitempty"`
}

// Ports is the YAML form of ir.Ports.
type Ports struct {
	A       int `yaml:"a"`
	B       int `yaml:"b"`
	Offset  int `yaml:"offset"`
	Product int `yaml:"product"`
}

// Assertion type constants.
const (
	AssertCellCounts  = "cell_counts"
	AssertTargets     = "targets"
	AssertPorts       = "ports"
	AssertFingerprint = "fingerprint"
	AssertRejected    = "rejected"
)

// LoadScenario reads and parses a scenario YAML file, resolving the design
// path against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the design path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Design != "" && !filepath.IsAbs(scenario.Design) && basePath != "" {
		scenario.Design = filepath.Join(basePath, scenario.Design)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Design == "" && s.Request == nil:
		return fmt.Errorf("one of design or request is required")
	case s.Design != "" && s.Request != nil:
		return fmt.Errorf("design and request are mutually exclusive")
	case s.Request != nil && s.Block != "":
		return fmt.Errorf("block only applies to design scenarios")
	}

	if s.Design != "" {
		if _, err := os.Stat(s.Design); os.IsNotExist(err) {
			return fmt.Errorf("design file not found: %s", s.Design)
		}
	}

	if s.Verify.Samples < 0 {
		return fmt.Errorf("verify.samples must not be negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	rejected := false
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
		if assertion.Type == AssertRejected {
			rejected = true
		}
	}
	if rejected && len(s.Assertions) > 1 {
		return fmt.Errorf("a rejected assertion must be the only assertion")
	}
	if rejected && (len(s.Cases) > 0 || s.Verify.Exhaustive || s.Verify.Samples > 0) {
		return fmt.Errorf("rejected scenarios cannot verify or pin cases")
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCellCounts:
		if a.HalfAdders == nil && a.FullAdders == nil {
			return fmt.Errorf("assertions[%d]: cell_counts requires half_adders or full_adders", index)
		}
	case AssertTargets:
		// An empty list is a valid expectation: no reduction stages.
	case AssertPorts:
		if a.Ports == nil {
			return fmt.Errorf("assertions[%d]: ports requires ports", index)
		}
	case AssertFingerprint:
		if len(a.Fingerprint) != 64 {
			return fmt.Errorf("assertions[%d]: fingerprint must be 64 hex characters", index)
		}
	case AssertRejected:
		switch matrix.ErrorCode(a.Code) {
		case matrix.ErrCodeInvalidWidth, matrix.ErrCodeInvalidConstant, matrix.ErrCodeInvalidMode:
		default:
			return fmt.Errorf("assertions[%d]: rejected requires code INVALID_WIDTH, INVALID_CONSTANT or INVALID_MODE", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
