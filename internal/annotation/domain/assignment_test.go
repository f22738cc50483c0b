package domain

import (
	"slices"
	"testing"
)

func TestAssignLabelerIdempotent(t *testing.T) {
	assignment, err := CreateAssignment(CreateAssignmentInput{
		SubjectID:    "subject-1",
		VideoGroupID: "group-1",
		CreatedByID:  "owner-1",
	}, nil, stubIDGenerator("assignment-1"))
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	assignment.Clear()

	assignment.AssignLabeler("labeler-1", "owner-1", nil)
	assignment.AssignLabeler("labeler-1", "owner-1", nil)

	if len(assignment.LabelerIDs) != 1 {
		t.Fatalf("expected 1 labeler, got %d", len(assignment.LabelerIDs))
	}
	if len(assignment.Pending()) != 1 {
		t.Fatalf("expected 1 event for the first assign only, got %d", len(assignment.Pending()))
	}
}

func TestUnassignLabeler(t *testing.T) {
	assignment, err := CreateAssignment(CreateAssignmentInput{
		SubjectID:    "subject-1",
		VideoGroupID: "group-1",
		CreatedByID:  "owner-1",
	}, nil, stubIDGenerator("assignment-1"))
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	assignment.AssignLabeler("labeler-1", "owner-1", nil)
	assignment.AssignLabeler("labeler-2", "owner-1", nil)
	assignment.Clear()

	assignment.UnassignLabeler("labeler-1", "owner-1", nil)
	if slices.Contains(assignment.LabelerIDs, "labeler-1") {
		t.Fatal("expected labeler-1 removed")
	}
	if !slices.Contains(assignment.LabelerIDs, "labeler-2") {
		t.Fatal("expected labeler-2 kept")
	}
	if len(assignment.Pending()) != 1 {
		t.Fatalf("expected 1 event, got %d", len(assignment.Pending()))
	}

	assignment.UnassignLabeler("labeler-unknown", "owner-1", nil)
	if len(assignment.Pending()) != 1 {
		t.Fatal("expected removing an absent labeler to record nothing")
	}
}

func TestAddLabelersSkipsDuplicates(t *testing.T) {
	assignment, err := CreateAssignment(CreateAssignmentInput{
		SubjectID:    "subject-1",
		VideoGroupID: "group-1",
		CreatedByID:  "owner-1",
	}, nil, stubIDGenerator("assignment-1"))
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	assignment.AssignLabeler("labeler-1", "owner-1", nil)
	assignment.Clear()

	assignment.AddLabelers([]string{"labeler-1", "labeler-2", "labeler-3"}, "owner-1", nil)
	if len(assignment.LabelerIDs) != 3 {
		t.Fatalf("expected 3 labelers, got %d", len(assignment.LabelerIDs))
	}
	if len(assignment.Pending()) != 1 {
		t.Fatalf("expected a single batch event, got %d", len(assignment.Pending()))
	}

	assignment.ClearLabelers("owner-1", nil)
	if len(assignment.LabelerIDs) != 0 {
		t.Fatalf("expected no labelers after clear, got %d", len(assignment.LabelerIDs))
	}
}
