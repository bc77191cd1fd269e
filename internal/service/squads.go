package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/squadbuilder"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/utils"
)

// ErrInvalidRequest 包装所有可以直接展示给用户的请求错误
var ErrInvalidRequest = errors.New("分队请求无效")

type BuildRequest struct {
	NumSquads      int
	PopulationSize int           // 0 表示使用默认值
	Duration       time.Duration // 0 表示使用默认值
	Seed           *int64        // nil 表示使用随机种子
}

type SquadService struct {
	parameters  squadbuilder.Parameters
	duration    time.Duration
	maxDuration time.Duration
	recorder    metrics.Recorder
}

func NewSquadService(parameters squadbuilder.Parameters, duration, maxDuration time.Duration, recorder metrics.Recorder) *SquadService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if maxDuration < duration {
		maxDuration = duration
	}

	return &SquadService{
		parameters:  parameters,
		duration:    duration,
		maxDuration: maxDuration,
		recorder:    recorder,
	}
}

// Build 在给定时间内为球员名单计算一个尽量均衡的分队方案
func (s *SquadService) Build(ctx context.Context, players []*domain.Player, req BuildRequest) (*domain.TournamentResult, error) {
	if err := utils.ValidateSquadCount(req.NumSquads, len(players)); err != nil {
		s.recorder.IncBuildFailure("invalid_squad_count")
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	parameters := s.parameters
	if req.PopulationSize > 0 {
		parameters.PopulationSize = req.PopulationSize
	}

	duration := s.duration
	if req.Duration > 0 {
		duration = req.Duration
	}
	if duration > s.maxDuration {
		duration = s.maxDuration
	}

	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}

	start := time.Now()
	population, err := squadbuilder.NewPopulation(players, req.NumSquads, &parameters, rng)
	if err != nil {
		s.recorder.IncBuildFailure("invalid_parameters")
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	generations := population.Evolve(ctx, duration)

	result := population.Best().Result()
	result.Generations = generations
	result.Elapsed = time.Since(start)

	if err := utils.ValidateTournamentResult(result, players); err != nil {
		s.recorder.IncBuildFailure("inconsistent_result")
		return nil, err
	}

	s.recorder.ObserveBuild(req.NumSquads, generations, result.Fitness, result.Elapsed)
	slog.Info("分队完成",
		slog.Int("squads", req.NumSquads),
		slog.Int("players", len(players)),
		slog.Int("population", parameters.PopulationSize),
		slog.Int("generations", generations),
		slog.Float64("fitness", result.Fitness),
		slog.Duration("elapsed", result.Elapsed),
	)

	return result, nil
}
