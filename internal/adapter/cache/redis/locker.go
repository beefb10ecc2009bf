package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

// releaseScript deletes the lease only while it still carries our token, so
// a runner whose lease expired cannot drop the next holder's lease.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker hands out single-holder leases backed by SET NX with a TTL.
type Locker struct {
	client *redis.Client
	token  func() string
}

var _ ports.Locker = (*Locker)(nil)

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client, token: func() string { return uuid.NewString() }}
}

func lockKey(name string) string {
	return fmt.Sprintf("lock:%s", name)
}

func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	key := lockKey(name)
	token := l.token()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		return l.client.Eval(ctx, releaseScript, []string{key}, token).Err()
	}
	return release, true, nil
}
