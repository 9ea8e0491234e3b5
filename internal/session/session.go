package session

import (
	"context"

	"github.com/meridianhomes/homechat/internal/domain/chatmodel"
)

// Store keeps per-chat conversation history. Turns are append-only;
// the only way to shrink a history is to clear it entirely.
type Store interface {
	History(ctx context.Context, chatId string) ([]chatmodel.Turn, error)
	Append(ctx context.Context, chatId string, turns ...chatmodel.Turn) error
	Clear(ctx context.Context, chatId string) error
}
