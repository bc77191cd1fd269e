package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/roster"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/service"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/squadbuilder"
)

func main() {
	var location string
	var numSquads int
	var duration time.Duration
	var populationSize int
	var survivalRate float64
	var workers int
	var seed int64

	flag.StringVar(&location, "roster", "players.json", "球员名单的位置，可以是文件、HTTP 地址或者 s3://bucket/key")
	flag.IntVar(&numSquads, "n", 2, "小队数量")
	flag.DurationVar(&duration, "duration", 2500*time.Millisecond, "演化时间")
	flag.IntVar(&populationSize, "population", 500, "种群大小")
	flag.Float64Var(&survivalRate, "survival-rate", 0.1, "每一代保留的比例")
	flag.IntVar(&workers, "workers", 0, "并行计算适应度的数量，0 表示使用 GOMAXPROCS")
	flag.Int64Var(&seed, "seed", 0, "随机种子，0 表示随机")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	players, err := roster.NewLoader(time.Minute).Load(ctx, location)
	if err != nil {
		logger.Error("无法读取球员名单", slog.String("location", location), slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := service.NewSquadService(
		squadbuilder.Parameters{PopulationSize: populationSize, SurvivalRate: survivalRate, Workers: workers},
		duration, duration, nil,
	)

	req := service.BuildRequest{NumSquads: numSquads}
	if seed != 0 {
		req.Seed = &seed
	}

	// Ctrl+C 会提前结束演化并输出当前最好的结果
	result, err := svc.Build(ctx, players, req)
	if err != nil {
		logger.Error("分队失败", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printResult(os.Stdout, result)
}

func printResult(w io.Writer, result *domain.TournamentResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, squad := range result.Squads {
		fmt.Fprintf(tw, "小队 %d\n", squad.Number)
		printHeader(tw)
		for _, p := range squad.Members {
			printPlayer(tw, p)
		}
		fmt.Fprint(tw, "平均")
		for _, skill := range domain.Skills {
			fmt.Fprintf(tw, "\t%.2f", squad.Averages[skill])
		}
		fmt.Fprint(tw, "\n\n")
	}

	fmt.Fprintln(tw, "候补名单")
	if len(result.WaitList) == 0 {
		fmt.Fprintln(tw, "(空)")
	} else {
		printHeader(tw)
		for _, p := range result.WaitList {
			printPlayer(tw, p)
		}
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "方差")
	for _, skill := range domain.Skills {
		fmt.Fprintf(tw, "\t%s=%.4f", skill, result.Variances[skill])
	}
	fmt.Fprintf(tw, "\n适应度\t%.4f\n", result.Fitness)
	fmt.Fprintf(tw, "代数\t%d\n", result.Generations)
	fmt.Fprintf(tw, "耗时\t%s\n", result.Elapsed.Round(time.Millisecond))

	_ = tw.Flush()
}

func printHeader(w io.Writer) {
	fmt.Fprint(w, "球员")
	for _, skill := range domain.Skills {
		fmt.Fprintf(w, "\t%s", skill)
	}
	fmt.Fprintln(w)
}

func printPlayer(w io.Writer, p *domain.Player) {
	fmt.Fprint(w, p.Name())
	for _, skill := range domain.Skills {
		fmt.Fprintf(w, "\t%d", p.Rating(skill))
	}
	fmt.Fprintln(w)
}
