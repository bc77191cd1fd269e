package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/handler"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/repository"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/roster"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/service"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/squadbuilder"
	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := openDB(cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)

	if err := ensureInitialAdmin(cfg, repo); err != nil {
		logger.Error("无法创建初始管理员", "error", err)
		return
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare("email_queue", true, false, false, false, nil); err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	/**********************************************
	 * 创建分队服务
	 **********************************************/
	var recorder metrics.Recorder = metrics.Nop{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheus(reg, "")
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	svc := service.NewSquadService(
		squadbuilder.Parameters{
			PopulationSize: cfg.Optimizer.PopulationSize,
			SurvivalRate:   cfg.Optimizer.SurvivalRate,
			Workers:        cfg.Optimizer.Workers,
		},
		time.Duration(cfg.Optimizer.DurationMS)*time.Millisecond,
		time.Duration(cfg.Optimizer.MaxDurationMS)*time.Millisecond,
		recorder,
	)

	loader := roster.NewLoader(time.Duration(cfg.Roster.CacheMaxAge) * time.Second)

	/**********************************************
	 * 创建 handler
	 **********************************************/
	h, err := handler.NewHandler(cfg, repo, ch, rdb, svc, loader, metricsHandler)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	// 分队请求会占用一段计算时间，写超时不能小于最长的分队时间
	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	if maxBuild := time.Duration(cfg.Optimizer.MaxDurationMS) * time.Millisecond; writeTimeout < maxBuild+5*time.Second {
		writeTimeout = maxBuild + 5*time.Second
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: writeTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 不会立即建立连接
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}

	return dbpool, nil
}

// ensureInitialAdmin 确保数据库中存在初始管理员，已存在时不做任何修改
func ensureInitialAdmin(cfg *config.Config, repo *repository.Repository) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = repo.CreateCoach(&domain.Coach{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.RoleAdmin,
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "coaches_username_key" {
		return nil
	}
	return err
}
