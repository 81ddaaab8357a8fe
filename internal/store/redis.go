package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizlens/bizcalc/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "bizcalc"

// RedisRepository stores each record as a JSON value and keeps a per-tenant
// sorted set (scored by creation time) as the listing index.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository connects to addr and pings the server.
func NewRedisRepository(ctx context.Context, addr string) (*RedisRepository, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return &RedisRepository{client: rdb}, nil
}

func recordKey(id string) string { return redisKeyPrefix + ":analysis:" + id }

func tenantKey(tenantID string) string { return redisKeyPrefix + ":tenant:" + tenantID + ":analyses" }

func (r *RedisRepository) Save(ctx context.Context, rec *domain.AnalysisRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = newID()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, recordKey(rec.ID), data, 0)
		pipe.ZAdd(ctx, tenantKey(rec.TenantID), redis.Z{Score: float64(rec.CreatedAt.UnixNano()), Member: rec.ID})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save analysis: %w", err)
	}
	return rec.ID, nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	return getRedisRecord(ctx, r.client, id)
}

// redisGetter is satisfied by both *redis.Client and *redis.Tx.
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getRedisRecord(ctx context.Context, c redisGetter, id string) (*domain.AnalysisRecord, error) {
	data, err := c.Get(ctx, recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}
	var rec domain.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", id, err)
	}
	return &rec, nil
}

func (r *RedisRepository) List(ctx context.Context, tenantID string, analysisType domain.AnalysisType, limit int) ([]*domain.AnalysisRecord, error) {
	ids, err := r.client.ZRevRange(ctx, tenantKey(tenantID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	limit = normalizeLimit(limit)
	var out []*domain.AnalysisRecord
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if analysisType != "" && rec.AnalysisType != analysisType {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Approve uses WATCH so that two concurrent approvals cannot both succeed.
func (r *RedisRepository) Approve(ctx context.Context, id, approver string, at time.Time) (*domain.AnalysisRecord, error) {
	var approved *domain.AnalysisRecord
	key := recordKey(id)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		rec, err := getRedisRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec.IsApproved() {
			return ErrAlreadyApproved
		}
		at := at.UTC()
		rec.ApprovedBy = &approver
		rec.ApprovedAt = &at
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		approved = rec
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrAlreadyApproved
	}
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (r *RedisRepository) Close() error { return r.client.Close() }
