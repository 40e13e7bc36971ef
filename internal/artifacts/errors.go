package artifacts

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("artifact file not found")
	ErrMalformed       = errors.New("artifact is malformed")
	ErrUnsupportedKind = errors.New("unsupported artifact kind")
	ErrDimension       = errors.New("feature dimension mismatch")
)

// Role names which artifact of the pair failed.
type Role string

const (
	RoleScaler     Role = "scaler"
	RoleClassifier Role = "classifier"
)

// LoadError is returned by Load when an artifact cannot be read or decoded.
// A process that receives it must not serve predictions.
type LoadError struct {
	Role Role
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s artifact %s: %v", e.Role, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
