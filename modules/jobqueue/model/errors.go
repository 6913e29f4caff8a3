package model

import "errors"

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrJobNotProcessing = errors.New("job is not in processing state")
	ErrJobNotCancelable = errors.New("job cannot be cancelled in its current state")
	ErrKindRequired     = errors.New("job kind is required")
)

type ErrorCode string

const (
	CodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	CodeJobNotProcessing ErrorCode = "JOB_NOT_PROCESSING"
	CodeJobNotCancelable ErrorCode = "JOB_NOT_CANCELABLE"
	CodeKindRequired     ErrorCode = "JOB_KIND_REQUIRED"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return CodeJobNotFound
	case errors.Is(err, ErrJobNotProcessing):
		return CodeJobNotProcessing
	case errors.Is(err, ErrJobNotCancelable):
		return CodeJobNotCancelable
	case errors.Is(err, ErrKindRequired):
		return CodeKindRequired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return "Job not found"
	case errors.Is(err, ErrJobNotProcessing):
		return "Job is not in processing state"
	case errors.Is(err, ErrJobNotCancelable):
		return "Job cannot be cancelled in its current state"
	case errors.Is(err, ErrKindRequired):
		return "Job kind is required"
	default:
		return "Internal server error"
	}
}
