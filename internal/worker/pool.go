// Package worker 提供有界的合成任务工作池。
//
// 合成是唯一的长耗时操作，必须离开事件分发路径执行。任务一旦开始
// 不支持取消，只受配置的超时约束；失败不自动重试，由请求方重新发起。
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iabetor/voxbuddy/internal/logger"
)

// ErrBusy 表示等待队列已满，请求被拒绝。
var ErrBusy = errors.New("合成队列已满")

// ErrClosed 表示工作池已关闭。
var ErrClosed = errors.New("工作池已关闭")

// Job 一个合成任务。
type Job struct {
	UserID     int64
	Text       string
	SpeakerWAV string
	OutputPath string
}

// Result 任务执行结果，通过 Submit 返回的 channel 投递。
type Result struct {
	Err error
}

// SynthFunc 执行实际合成的函数。
type SynthFunc func(ctx context.Context, job Job) error

type task struct {
	job    Job
	result chan Result
}

// Pool 固定数量工作协程 + 有界等待队列。
type Pool struct {
	fn      SynthFunc
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	tasks  chan task
	wg     sync.WaitGroup
}

// NewPool 创建工作池并启动 workers 个工作协程。
// timeout 为单个任务的执行上限，<=0 表示不限制。
func NewPool(workers, queueSize int, timeout time.Duration, fn SynthFunc) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		fn:      fn,
		timeout: timeout,
		tasks:   make(chan task, queueSize),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}

	logger.Infof("[worker] 合成工作池已启动 (workers=%d queue=%d)", workers, queueSize)
	return p
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for t := range p.tasks {
		start := time.Now()

		// 任务开始后不再响应外部取消，仅受超时约束
		ctx := context.Background()
		cancel := context.CancelFunc(func() {})
		if p.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
		}

		err := p.fn(ctx, t.job)
		cancel()

		if err != nil {
			logger.Warnf("[worker] 任务失败 (worker=%d user=%d 耗时=%s): %v", id, t.job.UserID, time.Since(start), err)
		} else {
			logger.Infof("[worker] 任务完成 (worker=%d user=%d 耗时=%s)", id, t.job.UserID, time.Since(start))
		}

		t.result <- Result{Err: err}
	}
}

// Submit 将任务放入队列，返回接收结果的 channel。
// 队列已满返回 ErrBusy，池已关闭返回 ErrClosed；两种情况下任务都未入队。
func (p *Pool) Submit(job Job) (<-chan Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	t := task{job: job, result: make(chan Result, 1)}
	select {
	case p.tasks <- t:
		return t.result, nil
	default:
		return nil, ErrBusy
	}
}

// Close 停止接收新任务并等待在途任务完成。
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	logger.Info("[worker] 合成工作池已关闭")
}
