package squadbuilder

import (
	"math/rand"
)

// MutateSquads 在两个不同的小队之间交换球员，交换 1 或 2 次
func (t *Tournament) MutateSquads(rng *rand.Rand) {
	n := len(t.squads)
	if n < 2 {
		return
	}

	swaps := 1 + rng.Intn(2)
	for range swaps {
		// 随机选出两个不同的小队
		i := rng.Intn(n)
		j := rng.Intn(n - 1)
		if j >= i {
			j++
		}
		s1, s2 := t.squads[i], t.squads[j]
		if s1.Size() == 0 || s2.Size() == 0 {
			continue
		}

		// 各选一名球员并交换
		p1 := s1.members[rng.Intn(s1.Size())]
		p2 := s2.members[rng.Intn(s2.Size())]

		s1.RemoveMember(p1)
		s1.AddMember(p2)
		s2.RemoveMember(p2)
		s2.AddMember(p1)
	}

	t.invalidate()
}

// MutateSquadWithWaitList 以 1/2 的概率把某个小队的一名球员和候补名单中的一名球员交换
//
// 候补名单为空时什么也不做。小队从所有小队中等概率选出
func (t *Tournament) MutateSquadWithWaitList(rng *rand.Rand) {
	if len(t.waitList) == 0 || len(t.squads) == 0 {
		return
	}

	if rng.Intn(2) == 0 {
		return
	}

	s := t.squads[rng.Intn(len(t.squads))]
	if s.Size() == 0 {
		return
	}

	k := rng.Intn(len(t.waitList))
	p1 := s.members[rng.Intn(s.Size())]
	p2 := t.waitList[k]

	s.RemoveMember(p1)
	s.AddMember(p2)
	t.removeFromWaitList(p2)
	t.waitList = append(t.waitList, p1)

	t.invalidate()
}
