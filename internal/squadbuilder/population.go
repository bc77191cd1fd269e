package squadbuilder

import (
	"context"
	"math/rand"
	"runtime"
	"slices"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// 浮点数取整时的容差，保证 500*0.1、0.8/0.1 这类运算不会因为精度被向下取错
const epsilon = 1e-9

// Population 保存一代分队方案，始终按适应度从小到大排序
type Population struct {
	parameters  *Parameters
	players     []*domain.Player
	numSquads   int
	individuals []*Tournament
	generation  int
	rng         *rand.Rand
}

// NewPopulation 随机生成初始种群并排序
//
// rng 为 nil 时使用以当前时间为种子的随机源
func NewPopulation(players []*domain.Player, numSquads int, parameters *Parameters, rng *rand.Rand) (*Population, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if err := parameters.validate(); err != nil {
		return nil, err
	}
	if err := ValidateSquadCount(len(players), numSquads); err != nil {
		return nil, err
	}

	params := *parameters
	if params.Workers == 0 {
		params.Workers = runtime.GOMAXPROCS(0)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	p := &Population{
		parameters:  &params,
		players:     players,
		numSquads:   numSquads,
		individuals: make([]*Tournament, 0, params.PopulationSize),
		rng:         rng,
	}

	for i := 0; i < params.PopulationSize; i++ {
		p.individuals = append(p.individuals, p.randomTournament())
	}
	p.SortByFitness()

	return p, nil
}

func (p *Population) randomTournament() *Tournament {
	t := NewTournament(p.players, p.numSquads)
	t.FillSquadsRandom(p.rng)
	return t
}

// Individuals 返回当前种群（已排序）的副本切片
func (p *Population) Individuals() []*Tournament {
	return slices.Clone(p.individuals)
}

// Best 返回当前种群中适应度最小的方案
func (p *Population) Best() *Tournament {
	return p.individuals[0]
}

func (p *Population) Size() int {
	return len(p.individuals)
}

// Generation 返回已经演化的代数
func (p *Population) Generation() int {
	return p.generation
}

// evaluate 计算所有尚未缓存的适应度，每个方案互相独立，可以并行
func (p *Population) evaluate() {
	if p.parameters.Workers <= 1 {
		for _, t := range p.individuals {
			t.Fitness()
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(p.parameters.Workers)
	for _, t := range p.individuals {
		if t.fitness != nil {
			continue
		}
		g.Go(func() error {
			t.Fitness()
			return nil
		})
	}
	_ = g.Wait()
}

// SortByFitness 按适应度从小到大排序，相同适应度保持原有顺序
func (p *Population) SortByFitness() {
	p.evaluate()
	sort.SliceStable(p.individuals, func(i, j int) bool {
		return p.individuals[i].Fitness() < p.individuals[j].Fitness()
	})
}

// NextGeneration 淘汰、繁殖、补充随机个体并重新排序
func (p *Population) NextGeneration() {
	size := p.parameters.PopulationSize
	rate := p.parameters.SurvivalRate

	// 至少保留一个个体，保证最优解不会变差
	numSurvivors := max(1, int(float64(size)*rate+epsilon))
	numSurvivors = min(numSurvivors, len(p.individuals))
	numChildren := max(0, int((1-rate*2)/rate+epsilon))

	// 淘汰排名靠后的个体
	clear(p.individuals[numSurvivors:])
	p.individuals = p.individuals[:numSurvivors]

	// 每个存活个体单独繁殖，子代只通过变异产生
	for i := 0; i < numSurvivors; i++ {
		parent := p.individuals[i]
		for j := 0; j < numChildren && len(p.individuals) < size; j++ {
			child := parent.Copy()
			child.MutateSquads(p.rng)
			child.MutateSquadWithWaitList(p.rng)
			p.individuals = append(p.individuals, child)
		}
	}

	// 用随机个体补足种群
	for len(p.individuals) < size {
		p.individuals = append(p.individuals, p.randomTournament())
	}

	p.SortByFitness()
	p.generation++
}

// Evolve 在给定时间内不断演化，返回本次演化的代数
//
// 只在两代之间检查时间和 ctx，单次演化不会被打断
func (p *Population) Evolve(ctx context.Context, duration time.Duration) int {
	start := time.Now()
	generations := 0
	for time.Since(start) < duration {
		if ctx.Err() != nil {
			break
		}
		p.NextGeneration()
		generations++
	}
	return generations
}
