package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iabetor/voxbuddy/internal/audio"
	"github.com/iabetor/voxbuddy/internal/bot"
	"github.com/iabetor/voxbuddy/internal/config"
	"github.com/iabetor/voxbuddy/internal/logger"
	"github.com/iabetor/voxbuddy/internal/safety"
	"github.com/iabetor/voxbuddy/internal/store"
	"github.com/iabetor/voxbuddy/internal/tts"
	"github.com/iabetor/voxbuddy/internal/worker"
)

func main() {
	configPath := flag.String("config", "configs/voxbuddy.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("[main] VoxBuddy 启动中 (engine=%s log_level=%s)", cfg.TTS.Engine, cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
		cancel()
	}()

	st, err := store.New(cfg.Store.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化用户存储失败: %v\n", err)
		os.Exit(1)
	}

	converter := audio.NewConverter(cfg.Audio.FFmpegPath, cfg.Audio.SampleRate, cfg.Audio.Channels)

	// 引擎在启动时初始化一次。失败不终止进程：机器人照常运行，
	// 合成请求得到"不可用"回复，问题在日志里明确报告。
	engine := newEngine(cfg)

	pool := worker.NewPool(cfg.Synthesis.Workers, cfg.Synthesis.QueueSize,
		time.Duration(cfg.Synthesis.TimeoutSec)*time.Second,
		func(ctx context.Context, job worker.Job) error {
			if engine == nil {
				return tts.ErrUnavailable
			}
			return engine.Synthesize(ctx, job.Text, job.SpeakerWAV, job.OutputPath)
		})
	defer pool.Close()

	svc := bot.NewService(st, converter, pool, safety.NewFilter(cfg.Safety.DenyPhrases),
		engine != nil, cfg.Audio.MinSampleSec, cfg.Audio.MaxSampleSec)

	b, err := bot.New(cfg.Telegram, svc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建机器人失败: %v\n", err)
		os.Exit(1)
	}

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "机器人运行出错: %v\n", err)
		os.Exit(1)
	}

	logger.Info("[main] VoxBuddy 已停止")
}

// newEngine 按配置选择并初始化合成引擎，失败时返回 nil。
func newEngine(cfg *config.Config) tts.Engine {
	switch cfg.TTS.Engine {
	case "coqui":
		engine, err := tts.NewCoquiEngine(cfg.TTS.Coqui.Binary, cfg.TTS.Coqui.Model)
		if err != nil {
			logger.Errorf("[main] Coqui 引擎初始化失败，合成功能不可用: %v", err)
			return nil
		}
		return engine
	case "edge":
		return tts.NewEdgeEngine(cfg.TTS.Edge.Voice)
	default:
		logger.Errorf("[main] 未知的合成引擎 %q，合成功能不可用", cfg.TTS.Engine)
		return nil
	}
}
