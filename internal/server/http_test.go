package server

import (
	"net/http"
	"testing"

	"everkeep/memorial-service/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"http status passthrough", 404, 404},
		{"invalid credentials", errors.ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{"session not found", errors.ErrCodeSessionNotFound, http.StatusUnauthorized},
		{"quota exceeded", errors.ErrCodeQuotaExceeded, http.StatusForbidden},
		{"memorial not found", errors.ErrCodeMemorialNotFound, http.StatusNotFound},
		{"entry not found", errors.ErrCodeEntryNotFound, http.StatusNotFound},
		{"email taken", errors.ErrCodeEmailTaken, http.StatusConflict},
		{"slug taken", errors.ErrCodeSlugTaken, http.StatusConflict},
		{"already moderated", errors.ErrCodeEntryAlreadyModerated, http.StatusConflict},
		{"publish lock busy", errors.ErrCodePublishLockBusy, http.StatusConflict},
		{"token expired", errors.ErrCodeTokenExpired, http.StatusBadRequest},
		{"email mismatch", errors.ErrCodeEmailMismatch, http.StatusBadRequest},
		{"webhook signature", errors.ErrCodeWebhookSignature, http.StatusBadRequest},
		{"unknown code", 999999, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorStatus(tt.code))
		})
	}
}
