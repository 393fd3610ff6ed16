// internal/catalog/redis_store.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps every fund as one JSON document in a single hash, so a
// record is always written with one HSET.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, key: prefix + ":fundos"}
}

func (s *RedisStore) List(ctx context.Context) ([]models.Fund, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, apperrors.NewCatalogReadFailedError(err)
	}

	out := make([]models.Fund, 0, len(raw))
	for id, doc := range raw {
		f, err := decodeFund(doc)
		if err != nil {
			return nil, apperrors.NewCatalogReadFailedError(fmt.Errorf("fund %s: %w", id, err))
		}
		out = append(out, f)
	}
	sortByID(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Fund, error) {
	doc, err := s.client.HGet(ctx, s.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return models.Fund{}, apperrors.NewFundNotFoundError(id)
	}
	if err != nil {
		return models.Fund{}, apperrors.NewCatalogReadFailedError(err)
	}

	f, err := decodeFund(doc)
	if err != nil {
		return models.Fund{}, apperrors.NewCatalogReadFailedError(fmt.Errorf("fund %s: %w", id, err))
	}
	return f, nil
}

func (s *RedisStore) Insert(ctx context.Context, fund models.Fund) error {
	doc, err := json.Marshal(fund)
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}

	created, err := s.client.HSetNX(ctx, s.key, fund.ID, doc).Result()
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}
	if !created {
		return apperrors.NewFundAlreadyExistsError(fund.ID)
	}
	return nil
}

func (s *RedisStore) Put(ctx context.Context, fund models.Fund) error {
	doc, err := json.Marshal(fund)
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}
	if err := s.client.HSet(ctx, s.key, fund.ID, doc).Err(); err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}
	return nil
}

func decodeFund(doc string) (models.Fund, error) {
	var f models.Fund
	err := json.Unmarshal([]byte(doc), &f)
	return f, err
}
