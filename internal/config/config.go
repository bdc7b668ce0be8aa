package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 VoxBuddy 的顶层配置结构。
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Store     StoreConfig     `yaml:"store"`
	Audio     AudioConfig     `yaml:"audio"`
	TTS       TTSConfig       `yaml:"tts"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Safety    SafetyConfig    `yaml:"safety"`
	Log       LogConfig       `yaml:"log"`
}

// TelegramConfig Telegram 机器人配置。
type TelegramConfig struct {
	// Token 机器人认证令牌，支持 ${VOXBUDDY_TELEGRAM_TOKEN} 环境变量展开。
	Token string `yaml:"token"`
	// Proxy 可选的 HTTP 代理地址。
	Proxy string `yaml:"proxy"`
	// PollTimeout 长轮询超时时间（秒）。
	PollTimeout int `yaml:"poll_timeout"`
	// AllowFrom 允许使用的用户 ID 白名单，为空则对所有用户开放。
	AllowFrom []int64 `yaml:"allow_from"`
}

// StoreConfig 用户数据存储配置。
type StoreConfig struct {
	// DataDir 每个用户一个子目录的数据根目录。
	DataDir string `yaml:"data_dir"`
}

// AudioConfig 音频规范化配置。
type AudioConfig struct {
	// FFmpegPath ffmpeg 可执行文件路径。
	FFmpegPath string `yaml:"ffmpeg_path"`
	// SampleRate 目标采样率（Hz）。
	SampleRate int `yaml:"sample_rate"`
	// Channels 目标声道数。
	Channels int `yaml:"channels"`
	// MinSampleSec 语音样本最短时长（秒），0 表示不限制。
	MinSampleSec int `yaml:"min_sample_sec"`
	// MaxSampleSec 语音样本最长时长（秒），0 表示不限制。
	MaxSampleSec int `yaml:"max_sample_sec"`
}

// TTSConfig 语音合成引擎配置。
type TTSConfig struct {
	// Engine 引擎选择: coqui（声音克隆，默认）或 edge（无克隆能力的备用引擎）。
	Engine string      `yaml:"engine"`
	Coqui  CoquiConfig `yaml:"coqui"`
	Edge   EdgeConfig  `yaml:"edge"`
}

// CoquiConfig Coqui TTS CLI 配置。
type CoquiConfig struct {
	// Binary tts 命令行工具路径。
	Binary string `yaml:"binary"`
	// Model 合成模型标识。
	Model string `yaml:"model"`
}

// EdgeConfig Edge TTS 配置。
type EdgeConfig struct {
	Voice string `yaml:"voice"`
}

// SynthesisConfig 合成任务调度配置。
type SynthesisConfig struct {
	// Workers 合成工作协程数量。
	Workers int `yaml:"workers"`
	// QueueSize 等待队列长度，满时新请求被拒绝。
	QueueSize int `yaml:"queue_size"`
	// TimeoutSec 单个合成任务的超时时间（秒）。
	TimeoutSec int `yaml:"timeout_sec"`
}

// SafetyConfig 安全过滤配置。
type SafetyConfig struct {
	// DenyPhrases 拒绝合成的关键词列表（小写子串匹配）。
	// 为空时使用内置默认列表。
	DenyPhrases []string `yaml:"deny_phrases"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${VOXBUDDY_TELEGRAM_TOKEN}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 30
	}
	if cfg.Store.DataDir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.Store.DataDir = home + "/.voxbuddy"
		} else {
			cfg.Store.DataDir = "./.voxbuddy-data"
		}
	} else if strings.HasPrefix(cfg.Store.DataDir, "~/") {
		// Go 不会自动展开 ~，需要手动替换为用户主目录
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.Store.DataDir = home + cfg.Store.DataDir[1:]
		}
	}
	if cfg.Audio.FFmpegPath == "" {
		cfg.Audio.FFmpegPath = "ffmpeg"
	}
	if cfg.Audio.SampleRate == 0 {
		cfg.Audio.SampleRate = 22050
	}
	if cfg.Audio.Channels == 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.MinSampleSec == 0 {
		cfg.Audio.MinSampleSec = 3
	}
	if cfg.Audio.MaxSampleSec == 0 {
		cfg.Audio.MaxSampleSec = 120
	}
	if cfg.TTS.Engine == "" {
		cfg.TTS.Engine = "coqui"
	}
	if cfg.TTS.Coqui.Binary == "" {
		cfg.TTS.Coqui.Binary = "tts"
	}
	if cfg.TTS.Coqui.Model == "" {
		cfg.TTS.Coqui.Model = "tts_models/multilingual/multi-dataset/your_tts"
	}
	if cfg.TTS.Edge.Voice == "" {
		cfg.TTS.Edge.Voice = "zh-CN-XiaoxiaoNeural"
	}
	if cfg.Synthesis.Workers == 0 {
		cfg.Synthesis.Workers = 2
	}
	if cfg.Synthesis.QueueSize == 0 {
		cfg.Synthesis.QueueSize = 8
	}
	if cfg.Synthesis.TimeoutSec == 0 {
		cfg.Synthesis.TimeoutSec = 300
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// 环境变量展开后常见首尾空白，统一去除
	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
}

// validate 检查必填项。
func validate(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token 未配置（可通过 VOXBUDDY_TELEGRAM_TOKEN 环境变量注入）")
	}
	if cfg.Audio.MaxSampleSec > 0 && cfg.Audio.MinSampleSec > cfg.Audio.MaxSampleSec {
		return fmt.Errorf("audio.min_sample_sec (%d) 不能大于 audio.max_sample_sec (%d)",
			cfg.Audio.MinSampleSec, cfg.Audio.MaxSampleSec)
	}
	return nil
}
