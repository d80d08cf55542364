package generation

// ErrorCode classifies a generation failure for the API surface. The set is
// closed: every failure a caller can see maps onto exactly one of these.
type ErrorCode string

const (
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeInvalidInput        ErrorCode = "INVALID_INPUT"
	CodeInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	CodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
)

// Failure is the error type the orchestrator returns. Message is safe to show
// to the end user; Err carries the underlying cause for the logs only.
type Failure struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return string(f.Code) + ": " + f.Message + ": " + f.Err.Error()
	}
	return string(f.Code) + ": " + f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func failInput(message string) *Failure {
	return &Failure{Code: CodeInvalidInput, Message: message}
}

func failCredits(message string) *Failure {
	return &Failure{Code: CodeInsufficientCredits, Message: message}
}

func failGeneration(message string, err error) *Failure {
	return &Failure{Code: CodeGenerationFailed, Message: message, Err: err}
}

// AsFailure extracts a *Failure from err, wrapping unknown errors as a
// generic generation failure so no internal detail leaks to the client.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := err.(*Failure); ok {
		return f
	}
	return failGeneration("Failed to generate image. Please try again.", err)
}

// StatusCode maps an error code to its HTTP status
func (c ErrorCode) StatusCode() int {
	switch c {
	case CodeUnauthorized:
		return 401
	case CodeInvalidInput:
		return 400
	case CodeInsufficientCredits:
		return 402
	default:
		return 500
	}
}
