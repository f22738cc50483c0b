package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
	"github.com/vidmark/vidmark/internal/platform/id"
)

// AccessCodeExpiration selects how long an access code stays valid.
type AccessCodeExpiration int

const (
	// ExpireUnspecified represents an invalid expiration value.
	ExpireUnspecified AccessCodeExpiration = iota
	// ExpireIn14Days expires the code two weeks after creation.
	ExpireIn14Days
	// ExpireIn30Days expires the code a month after creation.
	ExpireIn30Days
	// ExpireNever creates a code with no expiration.
	ExpireNever
	// ExpireCustom expires the code after a caller-provided number of days.
	ExpireCustom
)

const accessCodeLength = 16

const accessCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// AccessCode lets anonymous users join a project as labelers. The code
// itself is the credential; lookup by code is the one identity-free read
// path in the store.
type AccessCode struct {
	ID          string
	ProjectID   string
	Code        string
	CreatedByID string
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	DelDate     *time.Time

	Recorder
}

// CreateAccessCodeInput describes the access code to mint. CustomDays is
// read only when Expiration is ExpireCustom.
type CreateAccessCodeInput struct {
	ProjectID   string
	Expiration  AccessCodeExpiration
	CustomDays  int
	CreatedByID string
}

// CreateAccessCode mints a random 16-character code for a project.
func CreateAccessCode(input CreateAccessCodeInput, now func() time.Time, idGenerator func() (string, error)) (*AccessCode, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	createdAt := now().UTC()
	expiresAt, err := accessCodeExpiry(input.Expiration, input.CustomDays, createdAt)
	if err != nil {
		return nil, err
	}

	codeID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate access code id: %w", err)
	}
	code, err := generateAccessCode()
	if err != nil {
		return nil, fmt.Errorf("generate access code: %w", err)
	}

	accessCode := &AccessCode{
		ID:          codeID,
		ProjectID:   input.ProjectID,
		Code:        code,
		CreatedByID: input.CreatedByID,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}
	accessCode.Record(Event{
		ActorID:    input.CreatedByID,
		Message:    "Access code created",
		OccurredAt: createdAt,
	})
	return accessCode, nil
}

// Retire expires the code immediately and records a retirement event.
func (c *AccessCode) Retire(userID string, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	retiredAt := now().UTC()
	c.ExpiresAt = &retiredAt
	c.Record(Event{
		ActorID:    userID,
		Message:    "Access code retired",
		OccurredAt: retiredAt,
	})
}

// ExpiredAt reports whether the code is expired at the given instant.
// Codes without an expiration never expire.
func (c *AccessCode) ExpiredAt(at time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return at.After(*c.ExpiresAt)
}

func accessCodeExpiry(expiration AccessCodeExpiration, customDays int, createdAt time.Time) (*time.Time, error) {
	switch expiration {
	case ExpireIn14Days:
		expires := createdAt.AddDate(0, 0, 14)
		return &expires, nil
	case ExpireIn30Days:
		expires := createdAt.AddDate(0, 0, 30)
		return &expires, nil
	case ExpireNever:
		return nil, nil
	case ExpireCustom:
		if customDays <= 0 {
			return nil, apperrors.New(apperrors.CodeAccessCodeInvalidExpiration, "custom expiration requires a positive day count")
		}
		expires := createdAt.AddDate(0, 0, customDays)
		return &expires, nil
	}
	return nil, apperrors.New(apperrors.CodeAccessCodeInvalidExpiration, "access code expiration is required")
}

func generateAccessCode() (string, error) {
	data := make([]byte, accessCodeLength)
	if _, err := rand.Read(data); err != nil {
		return "", err
	}
	code := make([]byte, accessCodeLength)
	for i, b := range data {
		code[i] = accessCodeCharset[int(b)%len(accessCodeCharset)]
	}
	return string(code), nil
}
