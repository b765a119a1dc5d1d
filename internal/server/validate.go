package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// InputErrorKind tags a rejected prediction request with the validation rule
// it violated. Kinds are part of the API contract and must stay stable.
type InputErrorKind string

const (
	InputMalformed    InputErrorKind = "Malformed"
	InputMissingField InputErrorKind = "MissingField"
	InputWrongType    InputErrorKind = "WrongType"
	InputWrongArity   InputErrorKind = "WrongArity"
	InputNonNumeric   InputErrorKind = "NonNumeric"
)

// InputError is a user-facing validation failure.
type InputError struct {
	Kind    InputErrorKind
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func inputError(kind InputErrorKind, format string, args ...any) *InputError {
	return &InputError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ParseFeatures validates a raw /predict request body and extracts the
// feature vector. Rules are applied in order and short-circuit on the first
// failure, so the classifier is never reached with bad input:
//
//  1. body is a JSON object        -> Malformed
//  2. "features" key present       -> MissingField
//  3. "features" is an array       -> WrongType
//  4. array length equals want     -> WrongArity
//  5. every element finite number  -> NonNumeric
//
// Values outside the training range are deliberately accepted: the
// classifier returns a best-effort prediction for them.
func ParseFeatures(body []byte, want int) ([]float64, *InputError) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, inputError(InputMalformed, "request body must be a JSON object")
	}

	raw, ok := payload["features"]
	if !ok {
		return nil, inputError(InputMissingField, "missing required field %q", "features")
	}

	// A JSON null decodes into a nil slice without error, so it would slip
	// through to the arity check as an empty array. It is a scalar, not an
	// array, and must be rejected here.
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, inputError(InputWrongType, "field %q must be an array of numbers", "features")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, inputError(InputWrongType, "field %q must be an array of numbers", "features")
	}

	if len(elements) != want {
		return nil, inputError(InputWrongArity, "expected %d features, got %d", want, len(elements))
	}

	features := make([]float64, len(elements))
	for i, element := range elements {
		var value any
		if err := json.Unmarshal(element, &value); err != nil {
			return nil, inputError(InputNonNumeric, "features[%d] is not a finite number", i)
		}

		number, ok := value.(float64)
		if !ok || math.IsNaN(number) || math.IsInf(number, 0) {
			return nil, inputError(InputNonNumeric, "features[%d] is not a finite number", i)
		}

		features[i] = number
	}

	return features, nil
}
