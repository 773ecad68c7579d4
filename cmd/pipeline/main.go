package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/infrastructure/cache"
	"fraudpipeline/internal/infrastructure/lock"
	"fraudpipeline/internal/job"
	"fraudpipeline/internal/pipeline"
	"fraudpipeline/internal/queue"
	"fraudpipeline/pkg/idgen"
)

// 批处理入口
// 默认单次运行：成功退出码 0，任何致命失败退出码 1。
// pipeline.interval_minutes > 0 时转为常驻周期运行
func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	cfg := config.LoadConfig(*configPath)

	// 初始化 ID 生成器
	idgen.Init(1)

	// 队列消费端：未配置 Redis 时使用空实现，排空阶段直接得到空集
	var consumer queue.Consumer = queue.Disabled{}
	var runLock pipeline.RunLock
	if cfg.Redis.Host != "" {
		redisClient, err := cache.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("初始化 Redis 失败: %v", err)
		}
		defer redisClient.Close()

		consumer = queue.NewRedisQueue(redisClient, cfg.Queue.Name)
		if cfg.Pipeline.ExclusiveRun {
			runLock = lock.NewRunLock(redisClient, idgen.GenerateRunNo())
		}
	}

	runner := pipeline.NewRunner(cfg, consumer, runLock)

	// 周期模式：常驻运行直到收到中断信号
	if cfg.Pipeline.IntervalMinutes > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pipelineJob := job.NewPipelineJob(runner, time.Duration(cfg.Pipeline.IntervalMinutes)*time.Minute)
		go pipelineJob.Start(ctx)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("正在停止批处理...")
		cancel()
		pipelineJob.Stop()
		return
	}

	// 单次模式
	summary, err := runner.Run(context.Background())
	if err != nil {
		log.Printf("批处理运行失败: %v", err)
		os.Exit(1)
	}

	log.Printf("批处理完成: 处理 %d 笔, 命中 %d 笔, 新告警 %d 条",
		summary.TotalTransactions, summary.TotalFlagged, summary.AlertsInserted)
}
