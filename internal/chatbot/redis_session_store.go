package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSessionTTL   = 2 * time.Hour
	defaultLockTTL      = 10 * time.Second
	defaultLockWait     = 5 * time.Second
	defaultLockInterval = 25 * time.Millisecond
)

// releaseLock deletes the lock only while it still holds our token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionStore keeps sessions in Redis so several API replicas share them.
// States expire after the idle TTL.
type RedisSessionStore struct {
	redis        *redis.Client
	tracer       trace.Tracer
	ttl          time.Duration
	lockTTL      time.Duration
	lockWait     time.Duration
	lockInterval time.Duration
}

// RedisSessionOption customises a RedisSessionStore.
type RedisSessionOption func(*RedisSessionStore)

// WithSessionTTL sets how long an untouched conversation is kept.
func WithSessionTTL(ttl time.Duration) RedisSessionOption {
	return func(s *RedisSessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLockWait bounds how long a turn waits for the same user's previous turn.
func WithLockWait(wait time.Duration) RedisSessionOption {
	return func(s *RedisSessionStore) {
		if wait > 0 {
			s.lockWait = wait
		}
	}
}

// NewRedisSessionStore wraps a redis client.
func NewRedisSessionStore(client *redis.Client, opts ...RedisSessionOption) *RedisSessionStore {
	if client == nil {
		panic("chatbot: redis client cannot be nil")
	}
	s := &RedisSessionStore{
		redis:        client,
		tracer:       otel.Tracer("clinic.internal.chatbot.sessions"),
		ttl:          defaultSessionTTL,
		lockTTL:      defaultLockTTL,
		lockWait:     defaultLockWait,
		lockInterval: defaultLockInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("chatbot:session:%d", userID)
}

func sessionLockKey(userID int64) string {
	return fmt.Sprintf("chatbot:session:%d:lock", userID)
}

// Lock takes the user's lock with SET NX PX, polling until lockWait elapses.
func (s *RedisSessionStore) Lock(ctx context.Context, userID int64) (func(), error) {
	ctx, span := s.tracer.Start(ctx, "chatbot.session_lock")
	defer span.End()
	span.SetAttributes(attribute.Int64("clinic.user_id", userID))

	key := sessionLockKey(userID)
	token := uuid.NewString()
	deadline := time.NewTimer(s.lockWait)
	defer deadline.Stop()

	for {
		ok, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("chatbot: acquire session lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			span.RecordError(ErrSessionBusy)
			return nil, ErrSessionBusy
		case <-time.After(s.lockInterval):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseLock.Run(releaseCtx, s.redis, []string{key}, token).Err()
	}, nil
}

func (s *RedisSessionStore) Load(ctx context.Context, userID int64) (State, error) {
	ctx, span := s.tracer.Start(ctx, "chatbot.session_load")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewState(), nil
		}
		span.RecordError(err)
		return State{}, fmt.Errorf("chatbot: load session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return State{}, fmt.Errorf("chatbot: decode session: %w", err)
	}
	if !state.Step.Valid() {
		return NewState(), nil
	}
	return state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, userID int64, state State) error {
	ctx, span := s.tracer.Start(ctx, "chatbot.session_save")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "chatbot.session_delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(userID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chatbot: delete session: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisSessionStore) Close() error {
	return s.redis.Close()
}
