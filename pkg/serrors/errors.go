package serrors

import "fmt"

// BaseError is a coded error. Code is stable and machine-readable; Message is
// the default human-readable text; LocaleKey is an optional translation key
// for the presentation layer.
type BaseError struct {
	Code      string
	Message   string
	LocaleKey string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
