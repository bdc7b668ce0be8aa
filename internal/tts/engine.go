package tts

import (
	"context"
	"errors"
)

// ErrUnavailable 表示合成引擎未初始化或初始化失败。
var ErrUnavailable = errors.New("合成引擎不可用")

// Engine 定义语音合成后端接口。
type Engine interface {
	// Synthesize 将文本合成为音频并写入 outPath。
	// speakerWAV 为说话人参考样本路径，用于声音风格克隆；
	// 不具备克隆能力的引擎会忽略它。
	Synthesize(ctx context.Context, text, speakerWAV, outPath string) error
}
