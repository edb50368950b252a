package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"rentdesk/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Building stats caching
	GetBuildingStats(ctx context.Context, buildingID uuid.UUID, year, month int) (*models.RentStats, error)
	SetBuildingStats(ctx context.Context, buildingID uuid.UUID, year, month int, stats *models.RentStats, ttl time.Duration) error
	InvalidateBuildingStats(ctx context.Context, buildingID uuid.UUID) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "rediss://"), "redis://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func statsKey(buildingID uuid.UUID, year, month int) string {
	return fmt.Sprintf("rentdesk:stats:%s:%d-%02d", buildingID.String(), year, month)
}

func (r *redisCacheService) GetBuildingStats(ctx context.Context, buildingID uuid.UUID, year, month int) (*models.RentStats, error) {
	data, err := r.client.Get(ctx, statsKey(buildingID, year, month)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var stats models.RentStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetBuildingStats(ctx context.Context, buildingID uuid.UUID, year, month int, stats *models.RentStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, statsKey(buildingID, year, month), data, ttl).Err()
}

func (r *redisCacheService) InvalidateBuildingStats(ctx context.Context, buildingID uuid.UUID) error {
	pattern := fmt.Sprintf("rentdesk:stats:%s:*", buildingID.String())
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
