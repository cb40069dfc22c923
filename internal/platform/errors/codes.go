// Package errors provides structured error handling for the combat service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeNotFound          Code = "NOT_FOUND"
	CodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"
	CodeCombatNotFound    Code = "COMBAT_NOT_FOUND"
	CodeMonsterNotFound   Code = "MONSTER_NOT_FOUND"
	CodeItemNotFound      Code = "ITEM_NOT_FOUND"

	// Request validation errors
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeActionMissing    Code = "ACTION_MISSING"
	CodeActionUnknown    Code = "ACTION_UNKNOWN"
	CodeTargetMissing    Code = "TARGET_MISSING"
	CodeAreaMissing      Code = "AREA_MISSING"
	CodeCharacterMissing Code = "CHARACTER_MISSING"
	CodeCombatInProgress Code = "COMBAT_IN_PROGRESS"

	// State errors
	CodeOutcomeUndecided   Code = "OUTCOME_UNDECIDED"
	CodeCombatInactive     Code = "COMBAT_INACTIVE"
	CodeCombatCorrupt      Code = "COMBAT_CORRUPT"
	CodeHealthFull         Code = "HEALTH_FULL"
	CodeInsufficientAmount Code = "INSUFFICIENT_AMOUNT"
	CodeUnknownEffect      Code = "UNKNOWN_EFFECT"

	// Concurrency errors
	CodeRevisionConflict Code = "REVISION_CONFLICT"

	// Storage/transport errors
	CodeUpstream Code = "UPSTREAM_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input
	case CodeInvalidRequest,
		CodeActionMissing,
		CodeActionUnknown,
		CodeTargetMissing,
		CodeAreaMissing,
		CodeCombatInProgress:
		return http.StatusBadRequest

	case CodeCharacterMissing:
		return http.StatusUnauthorized

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeCharacterNotFound,
		CodeCombatNotFound,
		CodeMonsterNotFound,
		CodeItemNotFound:
		return http.StatusNotFound

	// Conflict - state doesn't allow operation, or a concurrent writer won
	case CodeOutcomeUndecided,
		CodeCombatInactive,
		CodeCombatCorrupt,
		CodeHealthFull,
		CodeInsufficientAmount,
		CodeRevisionConflict:
		return http.StatusConflict

	case CodeUpstream:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a client may retry the same request unchanged.
func (c Code) Retryable() bool {
	return c == CodeUpstream || c == CodeRevisionConflict
}
