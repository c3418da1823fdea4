package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/domain"
)

// maxTxRetries bounds optimistic-lock retries when concurrent writers collide.
const maxTxRetries = 10

// AlertStore is a Redis implementation of app.AlertRepository.
// Each recipient's alerts live as one JSON array under alerts:{recipientID}; every write is a
// WATCH/MULTI read-modify-write so concurrent read-state changes never overwrite each other.
type AlertStore struct {
	client *redis.Client
}

func NewAlertStore(client *redis.Client) *AlertStore {
	return &AlertStore{client: client}
}

// Add stores the batch in one transaction over every recipient key, so a duplicate id
// (a ValidationError) leaves all recipients untouched.
func (s *AlertStore) Add(ctx context.Context, batch ...domain.Alert) error {
	groups := make(map[string][]domain.Alert)
	for _, a := range batch {
		key := s.key(a.UserID)
		groups[key] = append(groups[key], a)
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}

	txf := func(tx *redis.Tx) error {
		next := make(map[string][]byte, len(groups))
		for key, group := range groups {
			current, err := load(ctx, tx, key)
			if err != nil {
				return err
			}
			merged, err := alerts.AppendUnique(current, group)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(merged)
			if err != nil {
				return fmt.Errorf("marshal alerts: %w", err)
			}
			next[key] = raw
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, raw := range next {
				pipe.Set(ctx, key, raw, 0)
			}
			return nil
		})
		return err
	}
	return s.watch(ctx, txf, keys...)
}

func (s *AlertStore) List(ctx context.Context, recipientID string) ([]domain.Alert, error) {
	return load(ctx, s.client, s.key(recipientID))
}

func (s *AlertStore) Update(ctx context.Context, recipientID string, fn func(alerts []domain.Alert) error) ([]domain.Alert, error) {
	var updated []domain.Alert
	err := s.transact(ctx, recipientID, func(current []domain.Alert) ([]domain.Alert, error) {
		if err := fn(current); err != nil {
			return nil, err
		}
		updated = current
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *AlertStore) transact(ctx context.Context, recipientID string, fn func([]domain.Alert) ([]domain.Alert, error)) error {
	key := s.key(recipientID)
	txf := func(tx *redis.Tx) error {
		current, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal alerts: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		return err
	}

	return s.watch(ctx, txf, key)
}

// watch runs txf under WATCH on keys, retrying when another writer got there first.
func (s *AlertStore) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %v: too much contention", keys)
}

func (s *AlertStore) key(recipientID string) string {
	return "alerts:" + recipientID
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c getter, key string) ([]domain.Alert, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Alert{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	var alerts []domain.Alert
	if err := json.Unmarshal(raw, &alerts); err != nil {
		return nil, fmt.Errorf("unmarshal alerts: %w", err)
	}
	return alerts, nil
}
