package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/data/redisstore"
	"github.com/meridianhomes/homechat/internal/domain/chatmodel"
	"github.com/meridianhomes/homechat/pkg/applog"
)

// RedisStore keeps each conversation as a Redis list of JSON turns so
// history survives process restarts.
type RedisStore struct {
	store  *redisstore.Store
	logger *applog.Logger
}

// GetRedisSessionStore returns nil when Redis is unreachable; callers
// fall back to the in-memory store.
func GetRedisSessionStore(ctx context.Context) *RedisStore {
	store := redisstore.GetRedisStore(ctx, config.RedisSessionStore)
	if store == nil {
		return nil
	}
	return &RedisStore{
		store:  store,
		logger: applog.NewLogger("SessionStore"),
	}
}

func NewTestRedisStore(store *redisstore.Store) *RedisStore {
	return &RedisStore{
		store:  store,
		logger: applog.NewLogger("SessionStore"),
	}
}

func (s *RedisStore) History(ctx context.Context, chatId string) ([]chatmodel.Turn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	raw, err := s.store.ListGetAll(ctx, chatId)
	if err != nil && !s.store.IsNil(err) {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	turns := make([]chatmodel.Turn, 0, len(raw))
	for _, entry := range raw {
		var turn chatmodel.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			return nil, fmt.Errorf("corrupt turn in chat %s: %w", chatId, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisStore) Append(ctx context.Context, chatId string, turns ...chatmodel.Turn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	values := make([]interface{}, len(turns))
	for i, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		values[i] = data
	}

	if err := s.store.ListPush(ctx, chatId, config.RedisSessionStoreTTL, values...); err != nil {
		log.Error("Error saving turns", "error", err)
		return err
	}
	log.Debug("Saved turns", "count", len(turns))
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatId string) error {
	return s.store.Del(ctx, chatId)
}
