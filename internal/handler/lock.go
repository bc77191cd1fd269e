package handler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrBuildInProgress = errors.New("正在分队，请稍后再试")

// BuildLock 保证同一时间只有一次分队计算在运行
type BuildLock interface {
	TryLock(ctx context.Context) (unlock func(), err error)
}

const buildLockKey = "squad_builder_build_lock"

// 只删除自己持有的锁，避免锁过期后误删别人的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisBuildLock struct {
	client     *redis.Client
	expiration time.Duration
}

// NewRedisBuildLock 创建基于 SETNX 的分队锁，expiration 以秒为单位
func NewRedisBuildLock(client *redis.Client, expiration int) BuildLock {
	return &redisBuildLock{
		client:     client,
		expiration: time.Duration(expiration) * time.Second,
	}
}

func (l *redisBuildLock) TryLock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, buildLockKey, token, l.expiration).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBuildInProgress
	}

	return func() {
		_ = unlockScript.Run(context.Background(), l.client, []string{buildLockKey}, token).Err()
	}, nil
}
