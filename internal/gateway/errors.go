package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/architect/internal/llm"
	"github.com/jonathan/architect/internal/schemas"
)

// Kind classifies a generation failure. Callers treat every kind the same way.
type Kind string

// Failure kinds.
const (
	KindNetwork Kind = "network"
	KindSchema  Kind = "schema"
	KindEmpty   Kind = "empty"
)

// errNoSteps marks a plan that parsed but carried no steps.
var errNoSteps = errors.New("plan has no steps")

// errTooManyCalls marks a chat turn that kept calling functions past the round limit.
var errTooManyCalls = errors.New("model kept requesting navigation without replying")

// GenerationError is returned by every gateway operation that fails.
type GenerationError struct {
	Op    string
	Kind  Kind
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// IsGenerationError reports whether err is or wraps a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// classify wraps err into a GenerationError for op.
func classify(op string, err error) *GenerationError {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindNetwork
	var (
		validationErr *schemas.ValidationError
		syntaxErr     *json.SyntaxError
		typeErr       *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, llm.ErrEmptyResponse), errors.Is(err, errNoSteps), errors.Is(err, errTooManyCalls):
		kind = KindEmpty
	case errors.As(err, &validationErr), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		kind = KindSchema
	}
	return &GenerationError{Op: op, Kind: kind, Cause: err}
}
