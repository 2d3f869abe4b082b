package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Background 在背景寄送，呼叫端不等待結果
type Background struct {
	next    Dispatcher
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewBackground(next Dispatcher, timeout time.Duration, log *zap.Logger) *Background {
	return &Background{next: next, timeout: timeout, log: log}
}

// Dispatch 回傳 true 表示已排入背景寄送
func (b *Background) Dispatch(ctx context.Context, msg Message) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return b.next.Dispatch(ctx, msg)
	}
	b.wg.Add(1)
	b.mu.Unlock()

	// 請求結束後 ctx 會被取消，寄送不可跟著中斷
	sendCtx := context.WithoutCancel(ctx)
	go func() {
		defer b.wg.Done()
		ctx := sendCtx
		if b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(sendCtx, b.timeout)
			defer cancel()
		}
		if !b.next.Dispatch(ctx, msg) && b.log != nil {
			b.log.Warn("背景寄送失敗", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		}
	}()
	return true
}

// Close 等待背景寄送完成，之後的寄送改為同步
func (b *Background) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}
