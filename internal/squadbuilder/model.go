package squadbuilder

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyRoster       = errors.New("球员名单为空")
	ErrTooFewSquads      = errors.New("小队数量必须大于 1")
	ErrTooManySquads     = errors.New("小队数量不能超过球员人数")
	ErrInvalidParameters = errors.New("遗传算法参数无效")
)

// 遗传算法参数
type Parameters struct {
	PopulationSize int     // 种群大小
	SurvivalRate   float64 // 每一代保留下来的个体比例
	Workers        int     // 并行计算适应度的 goroutine 数量，0 表示使用 GOMAXPROCS
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: 500,
		SurvivalRate:   0.1,
		Workers:        0,
	}
}

func (p *Parameters) validate() error {
	if p.PopulationSize < 1 {
		return fmt.Errorf("%w: 种群大小必须为正数", ErrInvalidParameters)
	}
	// 存活率超过 0.5 时每个个体产生的后代数量为 0，种群只能靠随机个体补足
	if p.SurvivalRate <= 0 || p.SurvivalRate > 0.5 {
		return fmt.Errorf("%w: 存活率必须在 (0, 0.5] 之间", ErrInvalidParameters)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: 并行数量不能为负数", ErrInvalidParameters)
	}
	return nil
}

// ValidateSquadCount 检查小队数量是否能让每个小队至少分到一名球员
func ValidateSquadCount(rosterSize int, numSquads int) error {
	if rosterSize == 0 {
		return ErrEmptyRoster
	}
	if numSquads < 2 {
		return ErrTooFewSquads
	}
	if numSquads > rosterSize {
		return ErrTooManySquads
	}
	return nil
}
