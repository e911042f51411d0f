package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fd1az/naijatrade/internal/store"
)

func TestGuards(t *testing.T) {
	anon := store.Snapshot{}
	user := store.Snapshot{Tokens: store.Tokens{AccessToken: "t"}, Profile: &store.Profile{ID: "u-1"}}
	admin := store.Snapshot{Tokens: store.Tokens{AccessToken: "t"}, Profile: &store.Profile{ID: "u-2", IsAdmin: true}}
	adminNoToken := store.Snapshot{Profile: &store.Profile{ID: "u-2", IsAdmin: true}}

	tests := []struct {
		name  string
		check Check
		snap  store.Snapshot
		want  Decision
	}{
		{"public anon", Public, anon, Allow},
		{"auth anon", RequireAuth, anon, RedirectLogin},
		{"auth user", RequireAuth, user, Allow},
		{"admin anon", RequireAdmin, anon, RedirectLogin},
		{"admin user", RequireAdmin, user, AccessDenied},
		{"admin admin", RequireAdmin, admin, Allow},
		{"admin flag without token", RequireAdmin, adminNoToken, RedirectLogin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.snap))
		})
	}
}
