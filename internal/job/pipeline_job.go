package job

import (
	"context"
	"log"
	"time"

	"fraudpipeline/internal/pipeline"
)

// PipelineJob 周期性批处理任务
// interval_minutes > 0 时由 cmd/pipeline 启动，按固定间隔跑一次完整流水线。
// 单次运行失败只记日志，不中断后续周期
type PipelineJob struct {
	runner   *pipeline.Runner
	stopCh   chan struct{}
	interval time.Duration
}

func NewPipelineJob(runner *pipeline.Runner, interval time.Duration) *PipelineJob {
	return &PipelineJob{
		runner:   runner,
		stopCh:   make(chan struct{}),
		interval: interval,
	}
}

func (j *PipelineJob) Start(ctx context.Context) {
	log.Printf("[PipelineJob] 周期批处理任务启动, 间隔 %v", j.interval)

	// 启动即跑一次，不等第一个周期
	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[PipelineJob] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[PipelineJob] 任务停止")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *PipelineJob) Stop() {
	close(j.stopCh)
}

func (j *PipelineJob) runOnce(ctx context.Context) {
	if _, err := j.runner.Run(ctx); err != nil {
		log.Printf("[PipelineJob] 本次运行失败: %v", err)
	}
}
