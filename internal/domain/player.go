package domain

import "time"

type Skill string

const (
	SkillSkating  Skill = "Skating"
	SkillShooting Skill = "Shooting"
	SkillChecking Skill = "Checking"
)

// Skills 是参与平衡计算的三项能力，顺序即展示顺序
var Skills = []Skill{SkillSkating, SkillShooting, SkillChecking}

// Player 在交给 squadbuilder 之后不会再被修改，多个方案之间共享同一个指针
type Player struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Ratings   map[Skill]int `json:"ratings"`
	CreatedAt time.Time     `json:"createdAt"`
	Version   int32         `json:"-"`
}

func (p *Player) Name() string {
	return p.FirstName + " " + p.LastName
}

// Rating 返回某项能力的评分，没有该项能力时视为 0
func (p *Player) Rating(skill Skill) int {
	return p.Ratings[skill]
}

func (p *Player) SkatingRating() int {
	return p.Rating(SkillSkating)
}

func (p *Player) ShootingRating() int {
	return p.Rating(SkillShooting)
}

func (p *Player) CheckingRating() int {
	return p.Rating(SkillChecking)
}
