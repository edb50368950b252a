package common

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"valid mobile", "13812340000", false},
		{"valid 19 prefix", "19912345678", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too short", "1381234000", true},
		{"too long", "138123400001", true},
		{"bad second digit", "12812340000", true},
		{"landline", "02112345678", true},
		{"letters", "138abcd0000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"standard number", "13812340000", "138****0000"},
		{"empty passes through", "", ""},
		{"short passes through", "12345", "12345"},
		{"long passes through", "138123400001", "138123400001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPhone(tt.phone))
		})
	}
}

func TestValidateUUID(t *testing.T) {
	id := uuid.New()

	parsed, err := ValidateUUID(id.String(), "building_id")
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ValidateUUID("", "building_id")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ValidateUUID("not-a-uuid", "building_id")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidatePayDay(t *testing.T) {
	assert.NoError(t, ValidatePayDay(1))
	assert.NoError(t, ValidatePayDay(28))
	assert.ErrorIs(t, ValidatePayDay(0), ErrInvalid)
	assert.ErrorIs(t, ValidatePayDay(29), ErrInvalid)
}

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"size capped", 2, 500, 2, 100},
		{"passes through", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := NormalizePagination(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestUserIDContextRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithUserID(context.Background(), id)

	got, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}
