package registry

import (
	"errors"

	"github.com/edvin/equipreg/internal/metrics"
)

// Error kinds returned by registry operations. Match with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotOwner           = errors.New("caller is not the owner")
	ErrNotAuthorized      = errors.New("caller is not authorized")
	ErrInvalidDateRange   = errors.New("certification date must be before expiration date")
	ErrAlreadyInitialized = errors.New("certification registry is already initialized with another owner")
)

// Numeric error codes, as returned by the deployed contracts. The two
// registries number their errors independently.
const (
	CodeAssetNotFound uint32 = 1
	CodeAssetNotOwner uint32 = 2

	CodeCertificationNotAuthorized    uint32 = 1
	CodeCertificationInvalidDateRange uint32 = 2
	CodeCertificationNotFound         uint32 = 2
)

// Error is a rejected registry call. It leaves state untouched.
type Error struct {
	Op   string
	Kind error
	Code uint32
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Code returns the contract error code carried by err, or 0 when err is not a
// rejected registry call.
func Code(err error) uint32 {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return 0
}

// KindName returns a stable snake_case name for err's kind, used as a log
// field and metric label.
func KindName(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotOwner):
		return "not_owner"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, ErrInvalidDateRange):
		return "invalid_date_range"
	case errors.Is(err, ErrAlreadyInitialized):
		return "already_initialized"
	default:
		return metrics.ResultError
	}
}

func observe(registryName, op string, err error) {
	metrics.ObserveOperation(registryName, op, KindName(err))
}
