package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortOrderRef(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"UUIDTruncated", "3fa85f64-5717-4562-b3fc-2c963f66afa6", "#3FA85F64"},
		{"ShortIDKeptWhole", "ab12", "#AB12"},
		{"ExactlyEight", "abcd1234", "#ABCD1234"},
		{"Empty", "", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortOrderRef(tt.in))
		})
	}
}

func TestUserContextRoundTrip(t *testing.T) {
	ctx := SetUserContext(context.Background(), "user-1", "u@x.test", "User One", "client")

	id, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, "u@x.test", GetUserEmailFromContext(ctx))
	assert.Equal(t, "User One", GetUserNameFromContext(ctx))
	assert.Equal(t, "client", GetUserRoleFromContext(ctx))
}

func TestGetUserIDFromContext_Anonymous(t *testing.T) {
	t.Run("Unset", func(t *testing.T) {
		_, ok := GetUserIDFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("EmptyID", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), "", "", "", "")
		_, ok := GetUserIDFromContext(ctx)
		assert.False(t, ok)
	})
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, "nope", http.StatusForbidden)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"nope"}`, rec.Body.String())
}

func TestPtrString(t *testing.T) {
	assert.Equal(t, "", PtrString(nil))
	assert.Equal(t, "x", PtrString(StrPtr("x")))
}
