package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

// ValidateSquadCount 检查请求的小队数量，错误信息会直接展示给用户
func ValidateSquadCount(numSquads int, rosterSize int) error {
	if numSquads < 2 || numSquads > rosterSize {
		return fmt.Errorf("小队数量必须大于 1 且不超过球员人数 (%d)", rosterSize)
	}
	return nil
}

// ValidateTournamentResult 检查分队结果是否完整：每名球员恰好出现一次，每个小队人数都等于容量
func ValidateTournamentResult(result *domain.TournamentResult, players []*domain.Player) error {
	if len(result.Squads) != result.NumSquads {
		return fmt.Errorf("分队结果中的小队数量 %d 和请求的数量 %d 不一致", len(result.Squads), result.NumSquads)
	}

	seen := make(map[*domain.Player]bool, len(players))
	check := func(p *domain.Player, where string) error {
		if seen[p] {
			return fmt.Errorf("球员 %s 在%s中重复出现", p.Name(), where)
		}
		seen[p] = true
		return nil
	}

	for _, squad := range result.Squads {
		if len(squad.Members) != result.Capacity {
			return fmt.Errorf("小队 %d 的人数 %d 和容量 %d 不一致", squad.Number, len(squad.Members), result.Capacity)
		}
		for _, p := range squad.Members {
			if err := check(p, fmt.Sprintf("小队 %d ", squad.Number)); err != nil {
				return err
			}
		}
	}
	for _, p := range result.WaitList {
		if err := check(p, "候补名单"); err != nil {
			return err
		}
	}

	if len(seen) != len(players) {
		return fmt.Errorf("分队结果中的球员人数 %d 和名单人数 %d 不一致", len(seen), len(players))
	}
	for _, p := range players {
		if !seen[p] {
			return fmt.Errorf("球员 %s 没有出现在分队结果中", p.Name())
		}
	}

	return nil
}
