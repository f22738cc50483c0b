package domain

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
)

func TestCreateAccessCodeIn14Days(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	code, err := CreateAccessCode(CreateAccessCodeInput{
		ProjectID:   "project-1",
		Expiration:  ExpireIn14Days,
		CreatedByID: "owner-1",
	}, fixedClock(createdAt), stubIDGenerator("code-1"))
	if err != nil {
		t.Fatalf("create access code: %v", err)
	}

	if len(code.Code) != 16 {
		t.Fatalf("expected 16 character code, got %d", len(code.Code))
	}
	for _, r := range code.Code {
		if !strings.ContainsRune(accessCodeCharset, r) {
			t.Fatalf("code contains unexpected character %q", r)
		}
	}
	want := createdAt.AddDate(0, 0, 14)
	if code.ExpiresAt == nil || !code.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, code.ExpiresAt)
	}
}

func TestCreateAccessCodeNeverExpires(t *testing.T) {
	code, err := CreateAccessCode(CreateAccessCodeInput{
		ProjectID:   "project-1",
		Expiration:  ExpireNever,
		CreatedByID: "owner-1",
	}, nil, stubIDGenerator("code-1"))
	if err != nil {
		t.Fatalf("create access code: %v", err)
	}
	if code.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", code.ExpiresAt)
	}
	if code.ExpiredAt(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected code without expiry to never expire")
	}
}

func TestCreateAccessCodeCustomDays(t *testing.T) {
	createdAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	code, err := CreateAccessCode(CreateAccessCodeInput{
		ProjectID:   "project-1",
		Expiration:  ExpireCustom,
		CustomDays:  3,
		CreatedByID: "owner-1",
	}, fixedClock(createdAt), stubIDGenerator("code-1"))
	if err != nil {
		t.Fatalf("create access code: %v", err)
	}
	want := createdAt.AddDate(0, 0, 3)
	if code.ExpiresAt == nil || !code.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, code.ExpiresAt)
	}
}

func TestCreateAccessCodeInvalidExpiration(t *testing.T) {
	cases := []CreateAccessCodeInput{
		{ProjectID: "project-1", Expiration: ExpireUnspecified},
		{ProjectID: "project-1", Expiration: ExpireCustom, CustomDays: 0},
		{ProjectID: "project-1", Expiration: ExpireCustom, CustomDays: -5},
	}
	for _, input := range cases {
		if _, err := CreateAccessCode(input, nil, nil); !apperrors.Is(err, apperrors.CodeAccessCodeInvalidExpiration) {
			t.Fatalf("expected invalid expiration error for %+v, got %v", input, err)
		}
	}
}

func TestAccessCodeRetire(t *testing.T) {
	code, err := CreateAccessCode(CreateAccessCodeInput{
		ProjectID:   "project-1",
		Expiration:  ExpireNever,
		CreatedByID: "owner-1",
	}, nil, stubIDGenerator("code-1"))
	if err != nil {
		t.Fatalf("create access code: %v", err)
	}
	code.Clear()

	retiredAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	code.Retire("owner-1", fixedClock(retiredAt))

	if code.ExpiresAt == nil || !code.ExpiresAt.Equal(retiredAt) {
		t.Fatalf("expected expiry %v after retire, got %v", retiredAt, code.ExpiresAt)
	}
	if !code.ExpiredAt(retiredAt.Add(time.Second)) {
		t.Fatal("expected retired code to be expired afterwards")
	}
	if code.ExpiredAt(retiredAt) {
		t.Fatal("expected code to still be valid at the exact expiry instant")
	}
	if len(code.Pending()) != 1 {
		t.Fatalf("expected 1 retirement event, got %d", len(code.Pending()))
	}
}
