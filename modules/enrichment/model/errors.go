package model

import "errors"

var (
	ErrProfileNotFound  = errors.New("external profile not found")
	ErrNoEnricherForURL = errors.New("no enricher recognises this url")
	ErrUnknownSource    = errors.New("unknown external profile source")
)

type ErrorCode string

const (
	CodeProfileNotFound  ErrorCode = "EXTERNAL_PROFILE_NOT_FOUND"
	CodeNoEnricherForURL ErrorCode = "NO_ENRICHER_FOR_URL"
	CodeUnknownSource    ErrorCode = "UNKNOWN_SOURCE"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return CodeProfileNotFound
	case errors.Is(err, ErrNoEnricherForURL):
		return CodeNoEnricherForURL
	case errors.Is(err, ErrUnknownSource):
		return CodeUnknownSource
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		return "External profile not found"
	case errors.Is(err, ErrNoEnricherForURL):
		return "No enricher recognises this url"
	case errors.Is(err, ErrUnknownSource):
		return "Unknown external profile source"
	default:
		return "Internal server error"
	}
}
