package model

import "errors"

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrNameRequired      = errors.New("candidate name is required")
	ErrDimensionMismatch = errors.New("embedding vector dimensionality does not match the model's output size")
)

type ErrorCode string

const (
	CodeCandidateNotFound ErrorCode = "CANDIDATE_NOT_FOUND"
	CodeNameRequired      ErrorCode = "CANDIDATE_NAME_REQUIRED"
	CodeDimensionMismatch ErrorCode = "EMBEDDING_DIMENSION_MISMATCH"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrCandidateNotFound):
		return CodeCandidateNotFound
	case errors.Is(err, ErrNameRequired):
		return CodeNameRequired
	case errors.Is(err, ErrDimensionMismatch):
		return CodeDimensionMismatch
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrCandidateNotFound):
		return "Candidate not found"
	case errors.Is(err, ErrNameRequired):
		return "Candidate name is required"
	case errors.Is(err, ErrDimensionMismatch):
		return "Embedding vector dimensionality does not match the model's output size"
	default:
		return "Internal server error"
	}
}
