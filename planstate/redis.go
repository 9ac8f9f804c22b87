package planstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func planKey(weekStart time.Time) string {
	return fmt.Sprintf("plancore:plan:%s", weekStart.Format("2006-01-02"))
}

const latestKey = "plancore:plan:latest"

func (r *RedisStore) SetPlan(ctx context.Context, plan *Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, planKey(plan.WeekStart), data, 0)
	pipe.Set(ctx, latestKey, planKey(plan.WeekStart), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) GetPlan(ctx context.Context, weekStart time.Time) (*Plan, error) {
	return r.getByKey(ctx, planKey(weekStart))
}

func (r *RedisStore) GetLatestPlan(ctx context.Context) (*Plan, error) {
	key, err := r.client.Get(ctx, latestKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.getByKey(ctx, key)
}

func (r *RedisStore) getByKey(ctx context.Context, key string) (*Plan, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var plan Plan
	return &plan, json.Unmarshal(data, &plan)
}

func (r *RedisStore) RemovePlan(ctx context.Context, weekStart time.Time) error {
	return r.client.Del(ctx, planKey(weekStart)).Err()
}
