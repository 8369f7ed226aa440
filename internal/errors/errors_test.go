package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(cause, ErrCodeNetworkOrTimeout, "session check failed")

	require.Error(t, err)
	assert.Equal(t, "session check failed: socket closed", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsTimeout(err))
	assert.False(t, IsNotFound(err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeUnknown, "nope"))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(errors.New("plain")))
	assert.Equal(t, ErrCodeInvalidCredentials, GetCode(InvalidCredentials("bad password")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Incorrect email or password.", UserMessage(InvalidCredentials("nope")))
	assert.Equal(t, "", UserMessage(nil))
	// Unmapped codes keep the raw code for diagnostics.
	assert.Contains(t, UserMessage(errors.New("boom")), "unknown")
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"no rows", pgx.ErrNoRows, ErrCodeNotFound},
		{"deadline", context.DeadlineExceeded, ErrCodeNetworkOrTimeout},
		{"canceled", context.Canceled, ErrCodeNetworkOrTimeout},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrCodeConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrCodeValidation},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "username"}, ErrCodeValidation},
		{"insufficient privilege", &pgconn.PgError{Code: "42501"}, ErrCodePermission},
		{"other pg error", &pgconn.PgError{Code: "57014"}, ErrCodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, GetCode(MapDBError(tt.err)))
		})
	}

	assert.NoError(t, MapDBError(nil))

	plain := errors.New("not a db error")
	assert.Equal(t, plain, MapDBError(plain))
}

func TestUniqueViolationField(t *testing.T) {
	assert.Equal(t, "email",
		uniqueViolationField(&pgconn.PgError{ColumnName: "email"}))
	assert.Equal(t, "username",
		uniqueViolationField(&pgconn.PgError{Detail: `Key (username)=(casey) already exists.`}))
	assert.Equal(t, "email",
		uniqueViolationField(&pgconn.PgError{ConstraintName: "profiles_email_key"}))
	assert.Equal(t, "",
		uniqueViolationField(&pgconn.PgError{ConstraintName: "profiles_email_username_key"}))
}
