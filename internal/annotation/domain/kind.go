package domain

// Kind identifies a governed entity type. Every Kind listed here carries
// ownership metadata and a soft-delete tombstone, and has a visibility
// predicate compiled for it at store bootstrap. The registry is explicit:
// adding a governed type means adding a Kind constant and its predicate.
type Kind string

const (
	KindProject       Kind = "project"
	KindSubject       Kind = "subject"
	KindVideoGroup    Kind = "video_group"
	KindVideo         Kind = "video"
	KindLabel         Kind = "label"
	KindAssignment    Kind = "assignment"
	KindAssignedLabel Kind = "assigned_label"
	KindAccessCode    Kind = "access_code"
	KindReport        Kind = "report"
)

// Kinds returns every governed kind in registration order.
func Kinds() []Kind {
	return []Kind{
		KindProject,
		KindSubject,
		KindVideoGroup,
		KindVideo,
		KindLabel,
		KindAssignment,
		KindAssignedLabel,
		KindAccessCode,
		KindReport,
	}
}

// Valid reports whether k is a registered governed kind.
func (k Kind) Valid() bool {
	switch k {
	case KindProject, KindSubject, KindVideoGroup, KindVideo, KindLabel,
		KindAssignment, KindAssignedLabel, KindAccessCode, KindReport:
		return true
	}
	return false
}

// DisplayName returns the human-readable entity name used in notification
// messages.
func (k Kind) DisplayName() string {
	switch k {
	case KindProject:
		return "Project"
	case KindSubject:
		return "Subject"
	case KindVideoGroup:
		return "Video group"
	case KindVideo:
		return "Video"
	case KindLabel:
		return "Label"
	case KindAssignment:
		return "Assignment"
	case KindAssignedLabel:
		return "Assigned label"
	case KindAccessCode:
		return "Access code"
	case KindReport:
		return "Report"
	}
	return string(k)
}
