package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/data/redisstore"
	"github.com/meridianhomes/homechat/internal/domain/chatmodel"
	"github.com/meridianhomes/homechat/internal/session"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return session.NewTestRedisStore(redisstore.NewTestStore(client)), mr
}

func storesUnderTest(t *testing.T) map[string]session.Store {
	redisBacked, _ := newRedisStore(t)
	return map[string]session.Store{
		"redis":    redisBacked,
		"inMemory": session.InitMemoryStore(),
	}
}

func TestStore_AppendAndHistoryRoundtrip(t *testing.T) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Append(ctx, "chat-1",
				chatmodel.UserTurn("How long does construction take?"),
				chatmodel.AssistantTurn("About twelve months."),
			)
			if err != nil {
				t.Fatalf("Append failed: %v", err)
			}
			err = store.Append(ctx, "chat-1", chatmodel.UserTurn("And the deposit?"))
			if err != nil {
				t.Fatalf("Second append failed: %v", err)
			}

			history, err := store.History(ctx, "chat-1")
			if err != nil {
				t.Fatalf("History failed: %v", err)
			}
			if len(history) != 3 {
				t.Fatalf("History length = %d, want 3", len(history))
			}
			if history[0].Role != chatmodel.RoleUser || history[1].Role != chatmodel.RoleAssistant {
				t.Errorf("Turn order wrong: %+v", history[:2])
			}
			if history[2].Content != "And the deposit?" {
				t.Errorf("Last turn = %+v", history[2])
			}
		})
	}
}

func TestStore_HistoryOfUnknownChatIsEmpty(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			history, err := store.History(ctx, "ghost-chat")
			if err != nil {
				t.Fatalf("History failed: %v", err)
			}
			if len(history) != 0 {
				t.Errorf("History = %+v, want empty", history)
			}
		})
	}
}

func TestStore_ClearDropsOnlyTheGivenChat(t *testing.T) {
	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_ = store.Append(ctx, "keep", chatmodel.UserTurn("stay"))
			_ = store.Append(ctx, "drop", chatmodel.UserTurn("go"))

			if err := store.Clear(ctx, "drop"); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}

			dropped, _ := store.History(ctx, "drop")
			if len(dropped) != 0 {
				t.Errorf("Cleared chat still has %d turns", len(dropped))
			}
			kept, _ := store.History(ctx, "keep")
			if len(kept) != 1 {
				t.Errorf("Untouched chat has %d turns, want 1", len(kept))
			}
		})
	}
}

func TestRedisStore_SetsExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "chat-ttl", chatmodel.UserTurn("hello")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if mr.TTL("chat-ttl") != config.RedisSessionStoreTTL {
		t.Errorf("TTL = %v, want %v", mr.TTL("chat-ttl"), config.RedisSessionStoreTTL)
	}
}

func TestInMemoryStore_Race(t *testing.T) {
	store := session.InitMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	const workers = 50
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, "race-chat", chatmodel.UserTurn("hi"))
			_, _ = store.History(ctx, "race-chat")
		}()
	}
	wg.Wait()

	history, _ := store.History(ctx, "race-chat")
	if len(history) != workers {
		t.Errorf("History length = %d, want %d", len(history), workers)
	}
}
