package common

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// GetUserIDFromContext extracts the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// WithUserID attaches the authenticated user ID to the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// ValidatePhone checks the 11-digit mobile number format.
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalid)
	}
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("%w: malformed phone number", ErrInvalid)
	}
	return nil
}

// MaskPhone hides the middle four digits of an 11-digit phone number.
func MaskPhone(phone string) string {
	if len(phone) != 11 {
		return phone
	}
	return phone[:3] + "****" + phone[7:]
}

// ValidateUUID parses a required UUID field.
func ValidateUUID(idStr, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", ErrInvalid, fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", ErrInvalid, fieldName)
	}
	return id, nil
}

// ValidateRequiredString checks that a required field is non-blank.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, fieldName)
	}
	return nil
}

// ValidatePayDay bounds the lease pay day to [1,28] so the due date exists in
// every month.
func ValidatePayDay(payDay int) error {
	if payDay < 1 || payDay > 28 {
		return fmt.Errorf("%w: pay_day must be between 1 and 28", ErrInvalid)
	}
	return nil
}

// NormalizePagination applies the 1-based page / default page size policy.
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// SafeString safely dereferences an optional string.
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
