package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
	logx "github.com/Wayfarer-core-poc-v1/server/pkg/logger"
)

const (
	fieldActive = "_active"
	fieldOrder  = "_order"

	DefaultPlanTTL = 7 * 24 * time.Hour

	maxTxRetries = 16
)

// RedisPlanRepository keeps every plan of a session in one hash:
//
//	travel_plans:{session}  _active -> plan id
//	                        _order  -> JSON list of plan ids
//	                        plan_x  -> JSON StoredPlan
type RedisPlanRepository struct {
	rdb redis.UniversalClient
	ttl time.Duration
	now func() time.Time
}

func NewRedisPlanRepository(rdb redis.UniversalClient, ttl time.Duration) *RedisPlanRepository {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return &RedisPlanRepository{rdb: rdb, ttl: ttl, now: time.Now}
}

func (r *RedisPlanRepository) plansKey(sessionID string) string {
	return fmt.Sprintf("travel_plans:%s", sessionID)
}

// NewPlanID returns "plan_" followed by 8 hex characters.
func NewPlanID() string {
	id := uuid.New()
	return "plan_" + fmt.Sprintf("%x", id[:4])
}

func (r *RedisPlanRepository) Create(ctx context.Context, sessionID string, data model.PlanRecordData, name string) (string, error) {
	key := r.plansKey(sessionID)
	now := r.now().UTC().Format(time.RFC3339)
	plan := model.StoredPlan{
		PlanID:    NewPlanID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		RouteData: data,
	}

	err := r.update(ctx, key, func(tx *redis.Tx) error {
		order, err := r.order(ctx, tx, key)
		if err != nil {
			return err
		}
		if name == "" {
			plan.Name = fmt.Sprintf("Plan %d", len(order)+1)
		}
		b, err := json.Marshal(plan)
		if err != nil {
			logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to marshal plan")
			return fmt.Errorf("marshal plan: %w", err)
		}
		orderJSON, err := json.Marshal(append(order, plan.PlanID))
		if err != nil {
			return fmt.Errorf("marshal plan order: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, plan.PlanID, b, fieldOrder, orderJSON, fieldActive, plan.PlanID)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		return err
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to store plan in redis")
		return "", err
	}

	logx.Info().Str("sessionID", sessionID).Str("planID", plan.PlanID).Msg("plan stored")
	return plan.PlanID, nil
}

func (r *RedisPlanRepository) Get(ctx context.Context, sessionID, planID string) (*model.StoredPlan, error) {
	key := r.plansKey(sessionID)
	raw, err := r.rdb.HGet(ctx, key, planID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.Error().Err(err).Str("key", key).Msg("failed to load plan from redis")
		}
		return nil, errx.WrapRedis(err)
	}
	var plan model.StoredPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		logx.Error().Err(err).Str("key", key).Str("planID", planID).Msg("failed to unmarshal plan")
		return nil, fmt.Errorf("unmarshal plan %s: %w", planID, err)
	}
	return &plan, nil
}

func (r *RedisPlanRepository) Active(ctx context.Context, sessionID string) (*model.StoredPlan, error) {
	key := r.plansKey(sessionID)
	planID, err := r.rdb.HGet(ctx, key, fieldActive).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}
	return r.Get(ctx, sessionID, planID)
}

// SetActive marks an existing plan as the active one.
func (r *RedisPlanRepository) SetActive(ctx context.Context, sessionID, planID string) error {
	key := r.plansKey(sessionID)
	ok, err := r.rdb.HExists(ctx, key, planID).Result()
	if err != nil {
		return errx.WrapRedis(err)
	}
	if !ok {
		return errx.WrapRedis(redis.Nil)
	}
	if err := r.rdb.HSet(ctx, key, fieldActive, planID).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisPlanRepository) List(ctx context.Context, sessionID string) ([]*model.StoredPlan, error) {
	key := r.plansKey(sessionID)
	order, err := r.order(ctx, r.rdb, key)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return []*model.StoredPlan{}, nil
	}

	rows, err := r.rdb.HMGet(ctx, key, order...).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}
	plans := make([]*model.StoredPlan, 0, len(rows))
	for i, row := range rows {
		s, ok := row.(string)
		if !ok {
			continue
		}
		var p model.StoredPlan
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			logx.Warn().Err(err).Str("planID", order[i]).Msg("skipping unreadable plan")
			continue
		}
		plans = append(plans, &p)
	}
	return plans, nil
}

// Delete removes a plan. When it was active, the newest remaining plan becomes active.
func (r *RedisPlanRepository) Delete(ctx context.Context, sessionID, planID string) error {
	key := r.plansKey(sessionID)
	err := r.update(ctx, key, func(tx *redis.Tx) error {
		order, err := r.order(ctx, tx, key)
		if err != nil {
			return err
		}
		kept := make([]string, 0, len(order))
		found := false
		for _, id := range order {
			if id == planID {
				found = true
				continue
			}
			kept = append(kept, id)
		}
		if !found {
			return errx.WrapRedis(redis.Nil)
		}

		active, err := tx.HGet(ctx, key, fieldActive).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return errx.WrapRedis(err)
		}
		orderJSON, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("marshal plan order: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, key, planID)
			pipe.HSet(ctx, key, fieldOrder, orderJSON)
			if active == planID {
				if len(kept) > 0 {
					pipe.HSet(ctx, key, fieldActive, kept[len(kept)-1])
				} else {
					pipe.HDel(ctx, key, fieldActive)
				}
			}
			return nil
		})
		return err
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete plan from redis")
	}
	return err
}

// update runs fn under WATCH on key and retries when another writer
// changed the hash between the read and the EXEC.
func (r *RedisPlanRepository) update(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for range maxTxRetries {
		err := r.rdb.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		var appErr *errx.AppError
		if err != nil && !errors.As(err, &appErr) {
			return errx.WrapRedis(err)
		}
		return err
	}
	return errx.WrapRedis(redis.TxFailedErr)
}

func (r *RedisPlanRepository) order(ctx context.Context, rdb redis.Cmdable, key string) ([]string, error) {
	raw, err := rdb.HGet(ctx, key, fieldOrder).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to read plan order")
		return nil, errx.WrapRedis(err)
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, fmt.Errorf("unmarshal plan order: %w", err)
	}
	return order, nil
}

var _ model.PlanRepository = (*RedisPlanRepository)(nil)
