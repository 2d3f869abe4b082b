package mailer

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/moebelhaus/shop-backend/notify"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const DefaultQueue = "mail_outbox"

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type consumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// 宣告 durable queue，worker 重啟後訊息不會遺失
func declareQueue(conn *amqp.Connection, queue string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

// QueuePublisher 將郵件放入 RabbitMQ，由 mail-worker 寄送
type QueuePublisher struct {
	mu    sync.Mutex
	ch    publishChannel
	queue string
	log   *zap.Logger
}

func NewQueuePublisher(conn *amqp.Connection, queue string, log *zap.Logger) (*QueuePublisher, *amqp.Channel, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	ch, err := declareQueue(conn, queue)
	if err != nil {
		return nil, nil, err
	}
	return newQueuePublisher(ch, queue, log), ch, nil
}

func newQueuePublisher(ch publishChannel, queue string, log *zap.Logger) *QueuePublisher {
	return &QueuePublisher{ch: ch, queue: queue, log: log.Named("mail-queue")}
}

// Dispatch 回傳 true 只代表已放入佇列
func (p *QueuePublisher) Dispatch(ctx context.Context, msg notify.Message) bool {
	body, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("無法序列化郵件", zap.Error(err))
		return false
	}

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	p.mu.Unlock()
	if err != nil {
		p.log.Error("無法將郵件放入佇列",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return false
	}
	return true
}

type sender interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Worker 從佇列取出郵件並寄送，手動 ack
type Worker struct {
	ch     consumeChannel
	queue  string
	sender sender
	log    *zap.Logger
}

func NewWorker(conn *amqp.Connection, queue string, client *Client, log *zap.Logger) (*Worker, *amqp.Channel, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	ch, err := declareQueue(conn, queue)
	if err != nil {
		return nil, nil, err
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, nil, err
	}
	return newWorker(ch, queue, client, log), ch, nil
}

func newWorker(ch consumeChannel, queue string, s sender, log *zap.Logger) *Worker {
	return &Worker{ch: ch, queue: queue, sender: s, log: log.Named("mail-worker")}
}

// Run 持續處理訊息直到 ctx 結束或 channel 關閉
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.ch.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	w.log.Info("mail worker started", zap.String("queue", w.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				w.log.Warn("佇列 channel 已關閉")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg notify.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		w.log.Error("無效的郵件訊息，丟棄", zap.Error(err), zap.ByteString("body", d.Body))
		_ = d.Nack(false, false)
		return
	}

	if err := w.sender.Send(ctx, msg); err != nil {
		// Client 已經重試過，這裡不再重新入列
		w.log.Error("寄送郵件失敗，丟棄",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
