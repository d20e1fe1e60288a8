package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/flagquiz/internal/game"
)

const (
	keyPrefix     = "flagquiz:game:"
	updateRetries = 5
)

// ErrContention is returned when optimistic updates keep losing races.
var ErrContention = errors.New("too many concurrent updates")

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore keeps games as JSON strings that expire ttl after their last write.
// A zero ttl keeps them forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (s *redisStore) Save(ctx context.Context, g *game.Game) error {
	b, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game: %w", err)
	}
	return s.rdb.Set(ctx, key(g.ID), b, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*game.Game, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, notFound(err)
	}
	return decode(b)
}

// Update uses WATCH/MULTI so two requests on the same game cannot both
// apply on top of the same version.
func (s *redisStore) Update(ctx context.Context, id string, fn func(g *game.Game) error) (*game.Game, error) {
	k := key(id)
	var out *game.Game

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			return notFound(err)
		}
		g, err := decode(b)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		nb, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encode game: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, nb, s.ttl)
			return nil
		})
		if err == nil {
			out = g
		}
		return err
	}

	for i := 0; i < updateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrContention
}

func notFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return err
}

func decode(b []byte) (*game.Game, error) {
	var g game.Game
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &g, nil
}
