package domain

import "time"

type SquadResult struct {
	Number   int               `json:"number"`
	Members  []*Player         `json:"members"`
	Averages map[Skill]float64 `json:"averages"`
}

// TournamentResult 是一次分队的只读结果，供 API、页面和邮件使用
type TournamentResult struct {
	NumSquads   int               `json:"numSquads"`
	Capacity    int               `json:"capacity"`
	Squads      []SquadResult     `json:"squads"`
	WaitList    []*Player         `json:"waitList"`
	Fitness     float64           `json:"fitness"`
	Variances   map[Skill]float64 `json:"variances"`
	Generations int               `json:"generations"`
	Elapsed     time.Duration     `json:"elapsed"`
}
