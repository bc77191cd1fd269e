package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

func TestImportLocation(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})

	tests := []struct {
		requested string
		want      string
		wantErr   bool
	}{
		{requested: "", want: "players.json"},
		{requested: "players.json", want: "players.json"},
		{requested: "https://example.com/players.json", want: "https://example.com/players.json"},
		{requested: "http://example.com/players.json", want: "http://example.com/players.json"},
		{requested: "s3://rosters/players.json", want: "s3://rosters/players.json"},
		{requested: "/etc/passwd", wantErr: true},
		{requested: "../players.json", wantErr: true},
		{requested: "./players.json", wantErr: true},
		{requested: "file:///etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			got, err := h.importLocation(tt.requested)
			if tt.wantErr {
				require.ErrorIs(t, err, errLocalRoster)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportPlayersRejectsServerFiles(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	admin := accountsOf(h).add(t, "admin", "correct-horse", domain.RoleAdmin)

	_, resp := call(t, h, http.MethodPost, "/players/import", map[string]any{"location": "/etc/passwd"}, cookieFor(t, h, admin), nil)
	assert.False(t, resp.Success)
	assert.Equal(t, errLocalRoster.Error(), resp.Message)
}

func TestImportPlayersRequiresAdmin(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{}, &fakeLock{})
	coach := accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)

	_, resp := call(t, h, http.MethodPost, "/players/import", map[string]any{"location": "https://example.com/players.json"}, cookieFor(t, h, coach), nil)
	assert.Equal(t, "权限不足", resp.Message)
}

func TestGetAllPlayers(t *testing.T) {
	h := newTestHandler(t, &fakeRoster{players: makeRoster(3)}, &fakeLock{})
	coach := accountsOf(h).add(t, "zhangwei", "correct-horse", domain.RoleCoach)

	var players []*domain.Player
	_, resp := call(t, h, http.MethodGet, "/players", nil, cookieFor(t, h, coach), &players)
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, players, 3)
}
