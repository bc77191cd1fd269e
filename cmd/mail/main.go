package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/config"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

// mailKind 描述一种邮件：使用的模板、标题以及正文数据的类型
type mailKind struct {
	template string
	subject  string
	data     func() any
}

var mailKinds = map[string]mailKind{
	"new_coach": {
		template: "new_account_email.html",
		subject:  "SquadBuilder - 账户信息",
		data:     func() any { return &domain.NewCoachMailData{} },
	},
	"reset_password": {
		template: "reset_password_otp_email.html",
		subject:  "SquadBuilder - 重置密码",
		data:     func() any { return &domain.ResetPasswordMailData{} },
	},
	"squads_built": {
		template: "squads_built_email.html",
		subject:  "SquadBuilder - 分队结果",
		data:     func() any { return &domain.SquadsBuiltMailData{} },
	},
}

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"skills": func() []domain.Skill { return domain.Skills },
	"round":  func(v float64) int64 { return int64(math.Round(v)) },
}).ParseFS(templateFS, "templates/*.html"))

type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// buildMessage 将队列中的消息转换为待发送的邮件
func buildMessage(from string, body []byte) (*mail.Msg, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	kind, ok := mailKinds[env.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的邮件类型 %q", env.Type)
	}

	data := kind.data()
	if err := json.Unmarshal(env.Data, data); err != nil {
		return nil, fmt.Errorf("邮件数据反序列化失败: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(env.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := m.SetBodyHTMLTemplate(templates.Lookup(kind.template), data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	m.Subject(kind.subject)

	return m, nil
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
		mail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue", // 队列名称
		true,          // 持久化
		false,         // 没有消费者时不自动删除
		false,         // 非独占
		false,         // 等待 RabbitMQ 确认
		nil,
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}

				m, err := buildMessage(cfg.Email.SMTP.Username, msg.Body)
				if err != nil {
					logger.Error("无法构建邮件", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSendWithContext(ctx, m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 重新入队
					continue
				}

				logger.Info("邮件已发送", slog.Int("size", len(msg.Body)))
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	slog.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker 已成功关闭")
}
