package bookingmail

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultDedupeTTL = 24 * time.Hour

// DedupeStore remembers which deliveries were already handled.
type DedupeStore interface {
	// MarkProcessed records id and reports whether this was the first mark.
	MarkProcessed(ctx context.Context, id string) (bool, error)
	// Release forgets id so a redelivery is processed again.
	Release(ctx context.Context, id string) error
}

// RedisDedupeStore keeps marks in Redis with a TTL.
type RedisDedupeStore struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	tracer trace.Tracer
}

func NewRedisDedupeStore(client *redis.Client, prefix string, ttl time.Duration, tracer trace.Tracer) *RedisDedupeStore {
	if client == nil {
		panic("bookingmail: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	if prefix == "" {
		prefix = "bookingmail"
	}
	if tracer == nil {
		tracer = otel.Tracer("hvac.internal.bookingmail.dedupe")
	}
	return &RedisDedupeStore{redis: client, ttl: ttl, prefix: prefix, tracer: tracer}
}

func (s *RedisDedupeStore) MarkProcessed(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "bookingmail.dedupe.mark", trace.WithAttributes(attribute.String("delivery.id", id)))
	defer span.End()

	first, err := s.redis.SetNX(ctx, s.key(id), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("bookingmail: mark delivery %s: %w", id, err)
	}
	span.SetAttributes(attribute.Bool("delivery.first", first))
	return first, nil
}

func (s *RedisDedupeStore) Release(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "bookingmail.dedupe.release", trace.WithAttributes(attribute.String("delivery.id", id)))
	defer span.End()

	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("bookingmail: release delivery %s: %w", id, err)
	}
	return nil
}

func (s *RedisDedupeStore) key(id string) string {
	return fmt.Sprintf("%s:delivery:%s", s.prefix, id)
}

// MemoryDedupeStore is the single-process fallback when Redis is not configured.
type MemoryDedupeStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	marks map[string]time.Time
}

func NewMemoryDedupeStore(ttl time.Duration, now func() time.Time) *MemoryDedupeStore {
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryDedupeStore{ttl: ttl, now: now, marks: make(map[string]time.Time)}
}

func (s *MemoryDedupeStore) MarkProcessed(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expires, ok := s.marks[id]; ok && now.Before(expires) {
		return false, nil
	}
	s.marks[id] = now.Add(s.ttl)
	return true, nil
}

func (s *MemoryDedupeStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.marks, id)
	s.mu.Unlock()
	return nil
}

var (
	_ DedupeStore = (*RedisDedupeStore)(nil)
	_ DedupeStore = (*MemoryDedupeStore)(nil)
)
