// Package notify 定義寄送通知郵件的介面。
//
// 寄送一律是盡力而為：Dispatch 只回傳是否送達，實作必須自行記錄錯誤，
// 呼叫端不可因為寄送失敗而回滾或改變自己的結果。
package notify

import (
	"context"

	"go.uber.org/zap"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) bool
}

type DispatcherFunc func(ctx context.Context, msg Message) bool

func (f DispatcherFunc) Dispatch(ctx context.Context, msg Message) bool {
	return f(ctx, msg)
}

// Disabled 未設定郵件服務時使用，只記錄不寄送
type Disabled struct {
	Log *zap.Logger
}

func (d Disabled) Dispatch(_ context.Context, msg Message) bool {
	if d.Log != nil {
		d.Log.Warn("郵件服務未設定，略過寄送",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
	}
	return false
}
