package session

import (
	"context"
	"sync"

	"github.com/meridianhomes/homechat/internal/domain/chatmodel"
)

type InMemoryStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]chatmodel.Turn
}

func InitMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]chatmodel.Turn),
	}
}

func (s *InMemoryStore) History(ctx context.Context, chatId string) ([]chatmodel.Turn, error) {
	s.chatLock.RLock()
	defer s.chatLock.RUnlock()
	turns := s.chatMap[chatId]
	out := make([]chatmodel.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *InMemoryStore) Append(ctx context.Context, chatId string, turns ...chatmodel.Turn) error {
	s.chatLock.Lock()
	defer s.chatLock.Unlock()
	s.chatMap[chatId] = append(s.chatMap[chatId], turns...)
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context, chatId string) error {
	s.chatLock.Lock()
	defer s.chatLock.Unlock()
	delete(s.chatMap, chatId)
	return nil
}
