// Package errors provides centralized error handling with categories and
// structured context for the b3-2d toolchain.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"strings"
)

// ErrorCategory represents the type of error for better categorization
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryFileIO        ErrorCategory = "file-io"
	CategoryFileParsing   ErrorCategory = "file-parsing"
	CategoryMeshGen       ErrorCategory = "mesh-generation"
	CategorySection       ErrorCategory = "section-extraction"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryDatabase      ErrorCategory = "database"
	CategoryRendering     ErrorCategory = "rendering"
	CategorySolver        ErrorCategory = "solver-execution"
	CategoryWorker        ErrorCategory = "worker-pool"
	CategoryPipeline      ErrorCategory = "pipeline-step"
	CategoryGeneric       ErrorCategory = "generic"
)

// EnhancedError wraps an error with category, component and context data.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Data      map[string]any
}

// Error implements the error interface.
func (e *EnhancedError) Error() string {
	if e.Err == nil {
		return string(e.Category)
	}
	return e.Err.Error()
}

// Unwrap supports errors.Is and errors.As.
func (e *EnhancedError) Unwrap() error {
	return e.Err
}

// GetCategory returns the error category.
func (e *EnhancedError) GetCategory() ErrorCategory {
	return e.Category
}

// GetContext returns a context value by key.
func (e *EnhancedError) GetContext(key string) (any, bool) {
	v, ok := e.Data[key]
	return v, ok
}

// String returns a verbose representation for logs.
func (e *EnhancedError) String() string {
	var sb strings.Builder
	if e.Component != "" {
		sb.WriteString("[" + e.Component + "] ")
	}
	if e.Category != "" {
		sb.WriteString(string(e.Category) + ": ")
	}
	sb.WriteString(e.Error())
	return sb.String()
}

// ErrorBuilder provides a fluent interface for creating enhanced errors
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New creates a new error builder wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf creates a new formatted error builder.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component sets the component name.
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error category for better grouping
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds context data to the error
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// FileContext adds file-specific context.
func (eb *ErrorBuilder) FileContext(filePath string) *ErrorBuilder {
	if filePath != "" {
		eb.Context("file", filePath)
	}
	return eb
}

// Build finalizes the enhanced error.
func (eb *ErrorBuilder) Build() error {
	category := eb.category
	if category == "" {
		category = CategoryGeneric
	}
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  category,
	}
	if eb.context != nil {
		ee.Data = make(map[string]any, len(eb.context))
		maps.Copy(ee.Data, eb.context)
	}
	return ee
}

// NewStd creates a plain error without enhancement, for sentinel values.
func NewStd(text string) error {
	return stderrors.New(text)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// CategoryOf returns the category of err if it is an EnhancedError.
func CategoryOf(err error) (ErrorCategory, bool) {
	var ee *EnhancedError
	if stderrors.As(err, &ee) {
		return ee.Category, true
	}
	return "", false
}
