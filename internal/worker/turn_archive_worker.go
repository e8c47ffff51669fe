package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/muralianand12345/AI-API/internal/cache"
	"github.com/muralianand12345/AI-API/internal/model"
	"github.com/muralianand12345/AI-API/internal/repository"
)

// TurnArchiveWorker consumes published conversation turns and persists them
// to MySQL, keeping the durable transcript out of the chat request path.
type TurnArchiveWorker struct {
	conn         *amqp.Connection
	repo         *repository.MessageRepository
	historyCache *cache.HistoryCache
	queueName    string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTurnArchiveWorker(conn *amqp.Connection, repo *repository.MessageRepository, historyCache *cache.HistoryCache, queueName string) *TurnArchiveWorker {
	return &TurnArchiveWorker{
		conn:         conn,
		repo:         repo,
		historyCache: historyCache,
		queueName:    queueName,
	}
}

func (w *TurnArchiveWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var msg model.Message
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					log.Printf("worker decode turn failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&msg); err != nil {
					log.Printf("worker archive turn failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				// The transcript changed underneath any cached copy. Drop the
				// dirty marker so the next read rebuilds the cache from MySQL.
				if w.historyCache != nil {
					if err := w.historyCache.ClearDirty(workerCtx, msg.Username); err != nil {
						log.Printf("worker clear dirty marker failed for %s: %v", msg.Username, err)
					}
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *TurnArchiveWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
