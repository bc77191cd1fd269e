package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gregjones/httpcache"
	"github.com/sysu-ecnc-dev/squad-builder/backend/internal/domain"
)

var (
	ErrBadStatus           = errors.New("获取球员数据失败")
	ErrUnsupportedLocation = errors.New("不支持的球员数据位置")
)

// S3API 是 Loader 用到的 S3 客户端方法
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader 从本地文件、HTTP(S) 地址或者 s3://bucket/key 读取球员名单
type Loader struct {
	HTTPClient *http.Client

	// S3Client 为 nil 时会在第一次读取 s3:// 地址时用默认配置创建
	S3Client S3API

	s3Once sync.Once
	s3Err  error
}

// NewLoader 创建一个带内存缓存的 Loader，HTTP 响应在 maxAge 内直接从缓存返回
func NewLoader(maxAge time.Duration) *Loader {
	hc := httpcache.NewMemoryCacheTransport()
	// 覆盖源站的缓存头，强制使用我们自己的缓存时间
	hc.Transport = &headerOverrideTransport{
		wrapped: http.DefaultTransport,
		maxAge:  maxAge,
	}

	return &Loader{
		HTTPClient: &http.Client{Transport: hc},
	}
}

type headerOverrideTransport struct {
	wrapped http.RoundTripper
	maxAge  time.Duration
}

func (t *headerOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.wrapped.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	resp.Header.Del("Pragma")
	resp.Header.Del("Expires")
	resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(t.maxAge/time.Second)))
	return resp, nil
}

// Load 读取、解析并校验球员名单
func (l *Loader) Load(ctx context.Context, location string) ([]*domain.Player, error) {
	data, err := l.Read(ctx, location)
	if err != nil {
		return nil, err
	}

	players, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(players); err != nil {
		return nil, err
	}

	return players, nil
}

// IsRemote 判断 location 是否是 HTTP(S) 或 S3 地址
func IsRemote(location string) bool {
	for _, prefix := range []string{"http://", "https://", "s3://"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

// Read 读取原始数据
func (l *Loader) Read(ctx context.Context, location string) ([]byte, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		return l.readS3(ctx, location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return l.readHTTP(ctx, location)
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, location)
	default:
		return os.ReadFile(location)
	}
}

func (l *Loader) readHTTP(ctx context.Context, location string) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s 返回 %d", ErrBadStatus, location, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (l *Loader) readS3(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, location)
	}

	l.s3Once.Do(func() {
		if l.S3Client != nil {
			return
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			l.s3Err = err
			return
		}
		l.S3Client = s3.NewFromConfig(cfg)
	})
	if l.s3Err != nil {
		return nil, l.s3Err
	}

	out, err := l.S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
