package domains

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultReportTTL is how long a health report is served before re-probing.
const DefaultReportTTL = time.Minute

// RedisReportStore stores health reports as JSON strings with a TTL.
type RedisReportStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisReportStore creates a report store. A non-positive ttl uses DefaultReportTTL.
func NewRedisReportStore(client redis.UniversalClient, ttl time.Duration) *RedisReportStore {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &RedisReportStore{client: client, prefix: "sitekit:domain-health:", ttl: ttl}
}

func (s *RedisReportStore) key(domain string) string {
	return s.prefix + domain
}

func (s *RedisReportStore) Get(ctx context.Context, domain string) (*HealthReport, error) {
	raw, err := s.client.Get(ctx, s.key(domain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get health report: %w", err)
	}

	var report HealthReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode health report: %w", err)
	}
	return &report, nil
}

func (s *RedisReportStore) Save(ctx context.Context, report HealthReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode health report: %w", err)
	}
	if err := s.client.Set(ctx, s.key(report.Domain), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save health report: %w", err)
	}
	return nil
}
