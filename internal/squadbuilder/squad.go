package squadbuilder

import (
	"slices"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

// Squad 是一个小队，成员顺序只影响展示
type Squad struct {
	members []*domain.Player
}

func NewSquad(members ...*domain.Player) *Squad {
	return &Squad{
		members: slices.Clone(members),
	}
}

// Copy 复制成员列表，球员本身仍然共享
func (s *Squad) Copy() *Squad {
	return &Squad{
		members: slices.Clone(s.members),
	}
}

// Members 返回成员列表的副本
func (s *Squad) Members() []*domain.Player {
	return slices.Clone(s.members)
}

func (s *Squad) AddMember(p *domain.Player) {
	s.members = append(s.members, p)
}

// RemoveMember 移除该球员，球员不在小队中时什么也不做
func (s *Squad) RemoveMember(p *domain.Player) {
	if i := slices.Index(s.members, p); i >= 0 {
		s.members = slices.Delete(s.members, i, i+1)
	}
}

func (s *Squad) Size() int {
	return len(s.members)
}

func (s *Squad) total(skill domain.Skill) int {
	total := 0
	for _, p := range s.members {
		total += p.Rating(skill)
	}
	return total
}

// Average 返回某项能力的平均分，空小队返回 NaN
func (s *Squad) Average(skill domain.Skill) float64 {
	return float64(s.total(skill)) / float64(s.Size())
}

func (s *Squad) SkatingAvg() float64 {
	return s.Average(domain.SkillSkating)
}

func (s *Squad) ShootingAvg() float64 {
	return s.Average(domain.SkillShooting)
}

func (s *Squad) CheckingAvg() float64 {
	return s.Average(domain.SkillChecking)
}
