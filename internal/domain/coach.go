package domain

import "time"

type Role string

const (
	RoleCoach Role = "教练"
	RoleAdmin Role = "管理员"
)

// Coach 是可以登录并发起分队的账号，管理员也是一种教练
type Coach struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	BuildCount   int        `json:"buildCount"`
	LastBuildAt  *time.Time `json:"lastBuildAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	Version      int32      `json:"-"`
}

// CanTune 表示能否调整分队参数（种群大小、时长、随机种子）
func (c *Coach) CanTune() bool {
	return c.Role == RoleAdmin
}
