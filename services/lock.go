package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"il2-stats/logger"

	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locker serialises migrations of one award within one tour. The returned
// function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LockKey names the critical section of an award in a tour.
func LockKey(award string, tourID uint) string {
	return fmt.Sprintf("award:%s:tour:%d", award, tourID)
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]*keyedLock{}}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key string, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

var redisUnlock = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker shares the critical sections between service instances.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
	Poll   time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{Client: client, TTL: 30 * time.Second, Poll: 100 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.Client.SetNX(key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Poll):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := redisUnlock.Run(l.Client, []string{key}, token).Err(); err != nil && err != redis.Nil {
				logger.L().Warn("redis unlock failed", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}
