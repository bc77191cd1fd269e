package squadbuilder

import (
	"math/rand"
	"slices"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Tournament 是一种完整的分队方案：若干小队加上候补名单
//
// 任意时刻所有小队成员与候补名单的并集恰好是整个球员名单，每名球员只出现一次
type Tournament struct {
	players   []*domain.Player
	numSquads int
	capacity  int
	squads    []*Squad
	waitList  []*domain.Player
	fitness   *float64 // nil 表示尚未计算或已经失效
}

// NewTournament 创建 numSquads 个空小队，所有球员都在候补名单中
func NewTournament(players []*domain.Player, numSquads int) *Tournament {
	t := &Tournament{
		players:   players,
		numSquads: numSquads,
		capacity:  len(players) / numSquads,
	}
	t.reset()
	return t
}

// Copy 深拷贝小队和候补名单，适应度需要重新计算
func (t *Tournament) Copy() *Tournament {
	c := &Tournament{
		players:   t.players,
		numSquads: t.numSquads,
		capacity:  t.capacity,
		squads:    make([]*Squad, len(t.squads)),
		waitList:  slices.Clone(t.waitList),
	}
	for i, s := range t.squads {
		c.squads[i] = s.Copy()
	}
	return c
}

func (t *Tournament) reset() {
	t.squads = make([]*Squad, t.numSquads)
	for i := range t.squads {
		t.squads[i] = NewSquad()
	}
	t.waitList = slices.Clone(t.players)
	t.invalidate()
}

func (t *Tournament) invalidate() {
	t.fitness = nil
}

// FillSquadsRandom 打乱球员顺序后依次把每个小队填满，剩下的球员留在候补名单
func (t *Tournament) FillSquadsRandom(rng *rand.Rand) {
	t.reset()

	shuffled := slices.Clone(t.players)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	j := 0
	for _, s := range t.squads {
		for j < len(shuffled) && s.Size() < t.capacity {
			p := shuffled[j]
			s.AddMember(p)
			t.removeFromWaitList(p)
			j++
		}
	}
}

func (t *Tournament) removeFromWaitList(p *domain.Player) {
	if i := slices.Index(t.waitList, p); i >= 0 {
		t.waitList = slices.Delete(t.waitList, i, i+1)
	}
}

// NumSquads 返回小队数量
func (t *Tournament) NumSquads() int {
	return t.numSquads
}

// Capacity 返回每个小队的人数上限，即 floor(球员人数 / 小队数量)
func (t *Tournament) Capacity() int {
	return t.capacity
}

// Squads 返回小队的副本，修改副本不会影响方案本身
func (t *Tournament) Squads() []*Squad {
	squads := make([]*Squad, len(t.squads))
	for i, s := range t.squads {
		squads[i] = s.Copy()
	}
	return squads
}

func (t *Tournament) WaitList() []*domain.Player {
	return slices.Clone(t.waitList)
}

// SkillVariance 计算各小队某项能力平均分的样本方差（除以 n-1）
func (t *Tournament) SkillVariance(skill domain.Skill) float64 {
	values := make([]float64, len(t.squads))
	for i, s := range t.squads {
		values[i] = s.Average(skill)
	}
	return stat.Variance(values, nil)
}

func (t *Tournament) SkatingVariance() float64 {
	return t.SkillVariance(domain.SkillSkating)
}

func (t *Tournament) ShootingVariance() float64 {
	return t.SkillVariance(domain.SkillShooting)
}

func (t *Tournament) CheckingVariance() float64 {
	return t.SkillVariance(domain.SkillChecking)
}

// Fitness 返回三项能力方差之和，越小越均衡
//
// 结果会被缓存，任何改变分队结构的操作都会使缓存失效
func (t *Tournament) Fitness() float64 {
	if t.fitness != nil {
		return *t.fitness
	}

	fitness := 0.0
	for _, skill := range domain.Skills {
		fitness += t.SkillVariance(skill)
	}
	t.fitness = &fitness
	return fitness
}

// Result 导出只读的分队结果
func (t *Tournament) Result() *domain.TournamentResult {
	res := &domain.TournamentResult{
		NumSquads: t.numSquads,
		Capacity:  t.capacity,
		Squads:    make([]domain.SquadResult, len(t.squads)),
		WaitList:  t.WaitList(),
		Fitness:   t.Fitness(),
		Variances: make(map[domain.Skill]float64, len(domain.Skills)),
	}

	for _, skill := range domain.Skills {
		res.Variances[skill] = t.SkillVariance(skill)
	}

	for i, s := range t.squads {
		averages := make(map[domain.Skill]float64, len(domain.Skills))
		for _, skill := range domain.Skills {
			averages[skill] = s.Average(skill)
		}
		res.Squads[i] = domain.SquadResult{
			Number:   i + 1,
			Members:  s.Members(),
			Averages: averages,
		}
	}

	return res
}
