package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/handler"
	"fraudpipeline/internal/infrastructure/cache"
	"fraudpipeline/internal/infrastructure/database"
	"fraudpipeline/internal/infrastructure/mq"
	"fraudpipeline/internal/queue"
	"fraudpipeline/internal/service"
	"fraudpipeline/pkg/idgen"

	"github.com/go-redis/redis/v8"
)

// 接入服务入口：接收交易、推入队列、异步触发批处理，
// 并为仪表盘提供只读查询
func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	cfg := config.LoadConfig(*configPath)

	// 初始化 ID 生成器
	idgen.Init(1)

	// 初始化 MySQL（只读查询 + 健康检查）
	db, err := database.Open(&cfg.MySQL)
	if err != nil {
		log.Fatalf("初始化 MySQL 失败: %v", err)
	}
	defer database.Close(db)

	// 查询接口依赖两张表存在，幂等建表
	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("初始化表结构失败: %v", err)
	}

	// 初始化 Redis 队列生产端
	var producer queue.Producer = queue.Disabled{}
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		client, err := cache.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("初始化 Redis 失败: %v", err)
		}
		defer client.Close()
		producer = queue.NewRedisQueue(client, cfg.Queue.Name)
		redisClient = client
	} else {
		log.Println("未配置 Redis，交易入队接口将直接报错")
	}

	// 初始化 Kafka 触发器（可选）
	var trigger service.Trigger = service.NoopTrigger{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := mq.NewProducer(&cfg.Kafka)
		if err != nil {
			log.Fatalf("初始化 Kafka 失败: %v", err)
		}
		defer kafkaProducer.Close()
		trigger = service.NewKafkaTrigger(kafkaProducer, cfg.Kafka.Topic.PipelineTrigger)
	}

	// 设置路由
	router := handler.SetupRouter(db, redisClient, producer, trigger, cfg)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	log.Println("服务已关闭")
}
