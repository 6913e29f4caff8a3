package model

import "errors"

var ErrJobNotFound = errors.New("job requirement not found")

type ErrorCode string

const (
	CodeJobNotFound   ErrorCode = "JOB_REQUIREMENT_NOT_FOUND"
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return CodeJobNotFound
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return "Job requirement not found"
	default:
		return "Internal server error"
	}
}
