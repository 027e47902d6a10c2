package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIngestion         = errors.New("ingestion failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrRetrieval         = errors.New("retrieval failed")
	ErrGeneration        = errors.New("generation failed")
	ErrRouting           = errors.New("routing failed")
	ErrInvalidInput      = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
