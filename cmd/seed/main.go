package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/repository"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/roster"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/seed"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var location string
	var csvPath string
	var replace bool

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机球员, 2: 导入球员名单, 3: 插入真实数据, 4: 插入随机教练)")
	flag.IntVar(&n, "n", 0, "要插入的记录数量，0 表示使用配置中的数量")
	flag.StringVar(&location, "location", "", "球员名单的位置，可以是文件、HTTP 地址或者 s3://bucket/key，默认使用配置中的位置")
	flag.StringVar(&csvPath, "csv", "./internal/seed/data/players.csv", "真实球员数据的 CSV 文件")
	flag.BoolVar(&replace, "replace", false, "导入前清空球员表")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if n == 0 {
		n = cfg.Seed.PlayerCount
	}
	if location == "" {
		location = cfg.Roster.Location
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的球员数量")
			return
		}

		players := make([]*domain.Player, n)
		for i := range players {
			players[i] = utils.GenerateRandomPlayer()
		}

		if err := repo.UpsertPlayers(players, replace); err != nil {
			slog.Error("无法插入球员", slog.String("error", err.Error()))
			return
		}
		slog.Info("插入球员成功", slog.Int("count", len(players)))
	case 2:
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Roster.FetchTimeout)*time.Second)
		defer cancel()

		loader := roster.NewLoader(time.Duration(cfg.Roster.CacheMaxAge) * time.Second)
		players, err := loader.Load(ctx, location)
		if err != nil {
			slog.Error("无法读取球员名单", slog.String("location", location), slog.String("error", err.Error()))
			return
		}

		if err := repo.UpsertPlayers(players, replace); err != nil {
			slog.Error("无法导入球员", slog.String("error", err.Error()))
			return
		}
		slog.Info("导入球员成功", slog.Int("count", len(players)))
	case 3:
		seed.SeedRealData(repo, csvPath)
	case 4:
		if n <= 0 {
			slog.Error("请输入合法的教练数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			coach, err := utils.GenerateRandomCoach(cfg.Seed.Coach.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机教练", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateCoach(coach); err != nil {
				slog.Error("无法插入教练", slog.String("error", err.Error()), slog.String("username", coach.Username))
				continue
			}

			cnt++
		}

		slog.Info("插入教练成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
