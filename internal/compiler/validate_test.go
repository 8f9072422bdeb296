package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dadda/internal/matrix"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateClean(t *testing.T) {
	half := 0.5
	blocks := []Block{
		{Request: matrix.Request{Name: "mul4", IntBits: 4}},
		{Request: matrix.Request{Name: "half", IntBits: 4, FracBits: 4, Mode: matrix.ConstAccumulate, Constant: 8}, Coefficient: &half},
	}
	assert.Empty(t, Validate(blocks))
}

func TestValidateDuplicateModuleNames(t *testing.T) {
	blocks := []Block{
		{Request: matrix.Request{Name: "mul-4", IntBits: 4}},
		{Request: matrix.Request{Name: "mul_4", IntBits: 4}},
	}
	errs := Validate(blocks)
	assert.Equal(t, []string{ErrInvalidBlockName, ErrDuplicateName}, codes(errs))
	assert.Contains(t, errs[1].Message, `"mul_4"`)
}

func TestValidateKeywordName(t *testing.T) {
	blocks := []Block{
		{Request: matrix.Request{Name: "wire", IntBits: 2}},
		{Request: matrix.Request{Name: "wire_", IntBits: 2}},
	}
	errs := Validate(blocks)
	assert.Equal(t, []string{ErrInvalidBlockName, ErrDuplicateName}, codes(errs))
	assert.Contains(t, errs[0].Message, `renders as "wire_"`)
}

func TestValidateReservedName(t *testing.T) {
	errs := Validate([]Block{{Request: matrix.Request{Name: "full_adder", IntBits: 2}}})
	assert.Equal(t, []string{ErrReservedBlockName}, codes(errs))
}

func TestValidateCoefficients(t *testing.T) {
	third := 1.0 / 3
	blocks := []Block{
		{Request: matrix.Request{Name: "third", IntBits: 2, FracBits: 4, Mode: matrix.ConstAccumulate, Constant: 5}, Coefficient: &third},
		{Request: matrix.Request{Name: "zero", IntBits: 2, Mode: matrix.ConstAccumulate}},
	}
	errs := Validate(blocks)
	require.Equal(t, []string{ErrLossyCoefficient, ErrZeroCoefficient}, codes(errs))
	assert.Contains(t, errs[0].Message, "truncated to 0.3125")
	assert.Equal(t, "multiplier.zero.coefficient", errs[1].Field)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "multiplier.x", Message: "bad", Code: ErrDuplicateName, Line: 3}
	assert.Equal(t, "[E101] line 3: multiplier.x: bad", e.Error())

	e.Line = 0
	assert.Equal(t, "[E101] multiplier.x: bad", e.Error())
}
