package squadbuilder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

func newPlayer(id string, skating, shooting, checking int) *domain.Player {
	return &domain.Player{
		ID:        id,
		FirstName: "Player",
		LastName:  id,
		Ratings: map[domain.Skill]int{
			domain.SkillSkating:  skating,
			domain.SkillShooting: shooting,
			domain.SkillChecking: checking,
		},
	}
}

// makeRoster 生成评分各不相同的 n 名球员
func makeRoster(n int) []*domain.Player {
	players := make([]*domain.Player, n)
	for i := range players {
		players[i] = newPlayer(fmt.Sprintf("p%02d", i), (i*7)%10, (i*3)%10, (i*5+1)%10)
	}
	return players
}

// requireConserved 检查小队成员和候补名单恰好覆盖整个名单一次
func requireConserved(t *testing.T, tour *Tournament, players []*domain.Player) {
	t.Helper()

	seen := make(map[*domain.Player]int, len(players))
	total := 0
	for _, s := range tour.squads {
		for _, p := range s.members {
			seen[p]++
			total++
		}
	}
	for _, p := range tour.waitList {
		seen[p]++
		total++
	}

	require.Equal(t, len(players), total)
	for _, p := range players {
		require.Equal(t, 1, seen[p], "球员 %s 出现次数错误", p.ID)
	}
}
