package model

import "errors"

var (
	ErrMatchNotFound = errors.New("candidate match not found")
	ErrAuditNotFound = errors.New("match audit not found")
)

type ErrorCode string

const (
	CodeMatchNotFound ErrorCode = "MATCH_NOT_FOUND"
	CodeAuditNotFound ErrorCode = "AUDIT_NOT_FOUND"
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return CodeMatchNotFound
	case errors.Is(err, ErrAuditNotFound):
		return CodeAuditNotFound
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return "Candidate match not found"
	case errors.Is(err, ErrAuditNotFound):
		return "Match audit not found"
	default:
		return "Internal server error"
	}
}
