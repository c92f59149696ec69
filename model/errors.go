package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies page-level failures
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	DocumentLoadFailed
	DocumentLocked
	NoPages
	RectangleGeometryInvalid
	CropMarksNotFound
	CropMarksAmbiguous
	CropBoxTooSmall
	InvalidBounds
	RasterizerUnavailable
	SingularCalibrationSystem
)

func (k ErrorKind) String() string {
	switch k {
	case DocumentLoadFailed:
		return "DocumentLoadFailed"
	case DocumentLocked:
		return "DocumentLocked"
	case NoPages:
		return "NoPages"
	case RectangleGeometryInvalid:
		return "RectangleGeometryInvalid"
	case CropMarksNotFound:
		return "CropMarksNotFound"
	case CropMarksAmbiguous:
		return "CropMarksAmbiguous"
	case CropBoxTooSmall:
		return "CropBoxTooSmall"
	case InvalidBounds:
		return "InvalidBounds"
	case RasterizerUnavailable:
		return "RasterizerUnavailable"
	case SingularCalibrationSystem:
		return "SingularCalibrationSystem"
	default:
		return "Unknown"
	}
}

// Error is a tagged failure result. Msg is meant for the end user.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// NewError creates an Error of the given kind
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error of the given kind around a cause
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrDocumentLoadFailed        = &Error{Kind: DocumentLoadFailed}
	ErrDocumentLocked            = &Error{Kind: DocumentLocked}
	ErrNoPages                   = &Error{Kind: NoPages}
	ErrRectangleGeometryInvalid  = &Error{Kind: RectangleGeometryInvalid}
	ErrCropMarksNotFound         = &Error{Kind: CropMarksNotFound}
	ErrCropMarksAmbiguous        = &Error{Kind: CropMarksAmbiguous}
	ErrCropBoxTooSmall           = &Error{Kind: CropBoxTooSmall}
	ErrInvalidBounds             = &Error{Kind: InvalidBounds}
	ErrRasterizerUnavailable     = &Error{Kind: RasterizerUnavailable}
	ErrSingularCalibrationSystem = &Error{Kind: SingularCalibrationSystem}
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
