package model

import "errors"

var ErrTrackerNotFound = errors.New("process tracker not found")

type ErrorCode string

const (
	CodeTrackerNotFound ErrorCode = "TRACKER_NOT_FOUND"
	CodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrTrackerNotFound):
		return CodeTrackerNotFound
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrTrackerNotFound):
		return "Process tracker not found"
	default:
		return "Internal server error"
	}
}
