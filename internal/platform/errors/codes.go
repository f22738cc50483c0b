// Package errors provides structured error handling for the annotation core.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Project errors
	CodeProjectNameEmpty     Code = "PROJECT_NAME_EMPTY"
	CodeProjectLabelerExists Code = "PROJECT_LABELER_EXISTS"

	// Subject/video errors
	CodeSubjectNameEmpty        Code = "SUBJECT_NAME_EMPTY"
	CodeVideoGroupNameEmpty     Code = "VIDEO_GROUP_NAME_EMPTY"
	CodeVideoTitleEmpty         Code = "VIDEO_TITLE_EMPTY"
	CodeVideoPathEmpty          Code = "VIDEO_PATH_EMPTY"
	CodeLabelNameEmpty          Code = "LABEL_NAME_EMPTY"
	CodeLabelInvalidType        Code = "LABEL_INVALID_TYPE"
	CodeAssignedLabelEmptyTimes Code = "ASSIGNED_LABEL_EMPTY_TIMES"

	// Assignment errors
	CodeAssignmentLabelerAssigned Code = "ASSIGNMENT_LABELER_ALREADY_ASSIGNED"
	CodeAssignmentLabelerMissing  Code = "ASSIGNMENT_LABELER_NOT_ASSIGNED"

	// Access code errors
	CodeAccessCodeExpired           Code = "ACCESS_CODE_EXPIRED"
	CodeAccessCodeRetired           Code = "ACCESS_CODE_RETIRED"
	CodeAccessCodeUnknown           Code = "ACCESS_CODE_UNKNOWN"
	CodeAccessCodeInvalidExpiration Code = "ACCESS_CODE_INVALID_EXPIRATION"

	// Join grant errors
	CodeJoinGrantInvalid  Code = "JOIN_GRANT_INVALID"
	CodeJoinGrantExpired  Code = "JOIN_GRANT_EXPIRED"
	CodeJoinGrantMismatch Code = "JOIN_GRANT_MISMATCH"

	// Report errors
	CodeReportTitleEmpty Code = "REPORT_TITLE_EMPTY"
	CodeReportPathEmpty  Code = "REPORT_PATH_EMPTY"

	// Storage errors
	CodeNotFound            Code = "NOT_FOUND"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeStorageUnavailable  Code = "STORAGE_UNAVAILABLE"

	// Dispatch errors
	CodeDispatchFailed    Code = "DISPATCH_FAILED"
	CodeEventDeadLettered Code = "EVENT_DEAD_LETTERED"
	CodeEventNotDead      Code = "EVENT_NOT_DEAD"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeProjectNameEmpty,
		CodeSubjectNameEmpty,
		CodeVideoGroupNameEmpty,
		CodeVideoTitleEmpty,
		CodeVideoPathEmpty,
		CodeLabelNameEmpty,
		CodeLabelInvalidType,
		CodeAssignedLabelEmptyTimes,
		CodeAccessCodeInvalidExpiration,
		CodeJoinGrantInvalid,
		CodeJoinGrantMismatch,
		CodeReportTitleEmpty,
		CodeReportPathEmpty:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeAccessCodeExpired,
		CodeAccessCodeRetired,
		CodeJoinGrantExpired,
		CodeAssignmentLabelerMissing,
		CodeEventDeadLettered,
		CodeEventNotDead:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist or isn't visible
	case CodeNotFound,
		CodeAccessCodeUnknown:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeProjectLabelerExists,
		CodeAssignmentLabelerAssigned:
		return codes.AlreadyExists

	// Aborted - caller should retry the transaction
	case CodeConcurrencyConflict:
		return codes.Aborted

	// Unavailable - transient storage failure
	case CodeStorageUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
