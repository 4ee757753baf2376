package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNetwork
	KindAPI
	KindSDKLoad
	KindDirections
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNetwork:
		return "NetworkError"
	case KindAPI:
		return "ApiError"
	case KindSDKLoad:
		return "SdkLoadError"
	case KindDirections:
		return "DirectionsError"
	default:
		return "UnknownError"
	}
}

// User-facing messages.
const (
	MsgNetworkError = "Network error. Please check your connection and try again."
	MsgAPIError     = "Failed to fetch data. Please try again later."
	MsgSDKLoad      = "Map provider failed to load. Please refresh the page."
	MsgCityRequired = `Please select both a "From" and "To" city.`
	MsgRouteDisplay = "Unable to display route. Please try again."
)

// Error is a categorized failure whose Message is safe to show to users.
type Error struct {
	Kind    ErrorKind
	Message string
	// Status carries the HTTP status code (KindAPI) or provider status (KindDirections).
	Status string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the category of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// UserMessage turns any error into the string shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return MsgAPIError
}
