package entity

import "fmt"

type ErrorKind string

const (
	ErrorKindConfig        ErrorKind = "config"
	ErrorKindArgument      ErrorKind = "argument"
	ErrorKindReadiness     ErrorKind = "readiness"
	ErrorKindOrchestration ErrorKind = "orchestration"
)

// TaskError classifies every failure a run_task call can report.
type TaskError struct {
	Kind ErrorKind
	Err  error
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrConfig        = &TaskError{Kind: ErrorKindConfig}
	ErrArgument      = &TaskError{Kind: ErrorKindArgument}
	ErrReadiness     = &TaskError{Kind: ErrorKindReadiness}
	ErrOrchestration = &TaskError{Kind: ErrorKindOrchestration}
)

func (e *TaskError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " error"
	}
	if e.Kind == ErrorKindOrchestration {
		return "error processing task: " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func (e *TaskError) Is(target error) bool {
	t, ok := target.(*TaskError)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

func NewConfigError(format string, args ...any) error {
	return &TaskError{Kind: ErrorKindConfig, Err: fmt.Errorf(format, args...)}
}

func NewArgumentError(format string, args ...any) error {
	return &TaskError{Kind: ErrorKindArgument, Err: fmt.Errorf(format, args...)}
}

func NewReadinessError(err error) error {
	return &TaskError{Kind: ErrorKindReadiness, Err: err}
}

func NewOrchestrationError(err error) error {
	return &TaskError{Kind: ErrorKindOrchestration, Err: err}
}
