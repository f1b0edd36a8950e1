package prices

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema is returned when required columns are missing
	ErrSchema = errors.New("schema error")

	// ErrNotFound is returned when no record matches a filter
	ErrNotFound = errors.New("not found")

	// ErrInsufficientData is returned when a series is below a minimum length
	ErrInsufficientData = errors.New("insufficient data")
)

// DataError carries a client-facing message and a sentinel kind for errors.Is
type DataError struct {
	Kind    error
	Message string
}

func (e *DataError) Error() string {
	return e.Message
}

func (e *DataError) Unwrap() error {
	return e.Kind
}

// NewDataError formats a DataError of the given kind
func NewDataError(kind error, format string, args ...interface{}) *DataError {
	return &DataError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// SchemaError lists the required columns a table lacks
type SchemaError struct {
	Missing   []string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("Missing required columns: %s. Available columns: %s",
		quotedList(e.Missing), quotedList(e.Available))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
