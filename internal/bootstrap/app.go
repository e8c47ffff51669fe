package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/muralianand12345/AI-API/internal/ai"
	"github.com/muralianand12345/AI-API/internal/cache"
	"github.com/muralianand12345/AI-API/internal/chunk"
	"github.com/muralianand12345/AI-API/internal/config"
	"github.com/muralianand12345/AI-API/internal/docstore"
	"github.com/muralianand12345/AI-API/internal/index"
	"github.com/muralianand12345/AI-API/internal/memory"
	"github.com/muralianand12345/AI-API/internal/model"
	"github.com/muralianand12345/AI-API/internal/pkg/pdfextract"
	mysqlClient "github.com/muralianand12345/AI-API/internal/platform/mysql"
	rabbitmqClient "github.com/muralianand12345/AI-API/internal/platform/rabbitmq"
	redisClient "github.com/muralianand12345/AI-API/internal/platform/redis"
	"github.com/muralianand12345/AI-API/internal/repository"
	"github.com/muralianand12345/AI-API/internal/worker"
)

// App holds the process-wide resources: external clients plus the shared
// in-memory retrieval and memory state.
type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	AI            *ai.Client
	Documents     *docstore.Store
	Memory        *memory.Store
	HistoryCache  *cache.HistoryCache
	ArchiveWorker *worker.TurnArchiveWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Message{}, &model.Upload{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	aiClient := ai.NewClient(ai.Config{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
	})

	splitter := chunk.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	indexStore := index.NewStore(aiClient)
	documents, err := docstore.NewStore(cfg.Data.Dir, splitter, pdfextract.New(), indexStore, cfg.RAG.TopK)
	if err != nil {
		return nil, err
	}

	historyCache := cache.NewHistoryCache(
		redisCli,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	messageRepo := repository.NewMessageRepository(mysqlDB)
	archiveWorker := worker.NewTurnArchiveWorker(mqConn, messageRepo, historyCache, cfg.RabbitMQ.TurnArchiveQueue)
	if err := archiveWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start turn archive worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		AI:            aiClient,
		Documents:     documents,
		Memory:        memory.NewStore(cfg.Memory.MaxStoredTurns),
		HistoryCache:  historyCache,
		ArchiveWorker: archiveWorker,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.ArchiveWorker != nil {
		a.ArchiveWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
