package sqlite

import (
	"fmt"

	"github.com/vidmark/vidmark/internal/annotation/actor"
	"github.com/vidmark/vidmark/internal/annotation/domain"
)

// visibilityPredicate is a compiled WHERE fragment scoped to the target
// table alias "t". The fragment embeds the whole ownership decision for
// one governed kind, including the liveness of every inlined ancestor, so
// a filtered query stays a single SQL statement. Only actor values are
// bound at call time.
type visibilityPredicate struct {
	where string
	args  func(act actor.Actor) []any
}

// tableByKind maps governed kinds to their backing tables. The unit of
// work uses it to target tombstone updates.
var tableByKind = map[domain.Kind]string{
	domain.KindProject:       "projects",
	domain.KindSubject:       "subjects",
	domain.KindVideoGroup:    "video_groups",
	domain.KindVideo:         "videos",
	domain.KindLabel:         "labels",
	domain.KindAssignment:    "assignments",
	domain.KindAssignedLabel: "assigned_labels",
	domain.KindAccessCode:    "access_codes",
	domain.KindReport:        "reports",
}

// visibilityByKind holds the predicate compiled for each governed kind.
// Compilation happens once at package init; queries only bind parameters.
var visibilityByKind = compileVisibility()

func boolParam(value bool) int {
	if value {
		return 1
	}
	return 0
}

// authAdminUser binds the three standard actor parameters: the
// authentication gate, the admin short-circuit, and the user id repeated
// for each ownership comparison in the fragment.
func authAdminUser(userIDBindings int) func(act actor.Actor) []any {
	return func(act actor.Actor) []any {
		args := []any{boolParam(act.IsAuthenticated), boolParam(act.IsAdmin)}
		for i := 0; i < userIDBindings; i++ {
			args = append(args, act.UserID)
		}
		return args
	}
}

// delegationVia builds the delegated-labeler membership test: the actor is
// a labeler on some live assignment whose matchColumn equals matchValue.
func delegationVia(matchColumn, matchValue string) string {
	return fmt.Sprintf(`EXISTS (
	SELECT 1 FROM assignments a
	JOIN assignment_labelers al ON al.assignment_id = a.id
	WHERE a.%s = %s AND a.del_date IS NULL AND al.labeler_id = ?
)`, matchColumn, matchValue)
}

func compileVisibility() map[domain.Kind]visibilityPredicate {
	predicates := make(map[domain.Kind]visibilityPredicate, len(tableByKind))

	// Projects are visible to their owner and to project labelers. The
	// leading ? gates authentication: 0 makes the whole predicate false,
	// so anonymous actors match nothing. The second ? is the admin
	// short-circuit.
	predicates[domain.KindProject] = visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND (? OR t.created_by_id = ? OR EXISTS (
	SELECT 1 FROM project_labelers pl
	WHERE pl.project_id = t.id AND pl.labeler_id = ?
))`,
		args: authAdminUser(2),
	}

	// Subjects inline their project: the project must be live, and the
	// actor must own it or be delegated through an assignment touching
	// this subject.
	predicates[domain.KindSubject] = visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND EXISTS (
	SELECT 1 FROM projects p
	WHERE p.id = t.project_id AND p.del_date IS NULL
	AND (? OR p.created_by_id = ? OR ` + delegationVia("subject_id", "t.id") + `)
)`,
		args: authAdminUser(2),
	}

	predicates[domain.KindVideoGroup] = visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND EXISTS (
	SELECT 1 FROM projects p
	WHERE p.id = t.project_id AND p.del_date IS NULL
	AND (? OR p.created_by_id = ? OR ` + delegationVia("video_group_id", "t.id") + `)
)`,
		args: authAdminUser(2),
	}

	// Videos inline two ancestors: the video group and its project must
	// both be live. Delegation flows through assignments on the group.
	predicates[domain.KindVideo] = visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND EXISTS (
	SELECT 1 FROM video_groups g
	JOIN projects p ON p.id = g.project_id
	WHERE g.id = t.video_group_id AND g.del_date IS NULL AND p.del_date IS NULL
	AND (? OR p.created_by_id = ? OR ` + delegationVia("video_group_id", "g.id") + `)
)`,
		args: authAdminUser(2),
	}

	predicates[domain.KindLabel] = visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND EXISTS (
	SELECT 1 FROM subjects s
	JOIN projects p ON p.id = s.project_id
	WHERE s.id = t.subject_id AND s.del_date IS NULL AND p.del_date IS NULL
	AND (? OR p.created_by_id = ? OR ` + delegationVia("subject_id", "s.id") + `)
)`,
		args: authAdminUser(2),
	}

	// Assignments are visible to the project owner and to their own
	// labelers.
	predicates[domain.KindAssignment] = visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND EXISTS (
	SELECT 1 FROM subjects s
	JOIN projects p ON p.id = s.project_id
	WHERE s.id = t.subject_id AND s.del_date IS NULL AND p.del_date IS NULL
	AND (? OR p.created_by_id = ? OR EXISTS (
		SELECT 1 FROM assignment_labelers al
		WHERE al.assignment_id = t.id AND al.labeler_id = ?
	))
)`,
		args: authAdminUser(2),
	}

	// Assigned labels are private between their creator and the project
	// owner. Other labelers on the same assignment cannot see them.
	predicates[domain.KindAssignedLabel] = visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND EXISTS (
	SELECT 1 FROM labels l
	JOIN subjects s ON s.id = l.subject_id
	JOIN projects p ON p.id = s.project_id
	WHERE l.id = t.label_id AND l.del_date IS NULL AND s.del_date IS NULL AND p.del_date IS NULL
	AND (? OR t.created_by_id = ? OR p.created_by_id = ?)
)`,
		args: authAdminUser(2),
	}

	// Access codes and reports are creator-only.
	creatorOnly := visibilityPredicate{
		where: `t.del_date IS NULL
AND ?
AND EXISTS (
	SELECT 1 FROM projects p
	WHERE p.id = t.project_id AND p.del_date IS NULL
	AND (? OR t.created_by_id = ?)
)`,
		args: authAdminUser(1),
	}
	predicates[domain.KindAccessCode] = creatorOnly
	predicates[domain.KindReport] = creatorOnly

	return predicates
}
