package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/iabetor/voxbuddy/internal/logger"
)

// ErrConversion 表示外部转换工具执行失败或未产出有效文件。
var ErrConversion = errors.New("音频转换失败")

// Converter 通过 ffmpeg 子进程把任意容器格式的音频规范化为
// 固定采样率的单声道 WAV。
type Converter struct {
	ffmpegPath string
	sampleRate int
	channels   int
}

// NewConverter 创建音频转换器。
func NewConverter(ffmpegPath string, sampleRate, channels int) *Converter {
	return &Converter{
		ffmpegPath: ffmpegPath,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// buildArgs 构造 ffmpeg 命令行参数。
func (c *Converter) buildArgs(src, dst string) []string {
	return []string{
		"-y",
		"-i", src,
		"-ar", strconv.Itoa(c.sampleRate),
		"-ac", strconv.Itoa(c.channels),
		dst,
		"-loglevel", "error",
	}
}

// Convert 将 src 转码为目标采样率/声道数并写入 dst。
// ffmpeg 退出码非零或输出文件缺失/为空时返回包裹 ErrConversion 的错误。
// 已规范化的文件再次转换是无损的（参数相同则输出稳定）。
func (c *Converter) Convert(ctx context.Context, src, dst string) error {
	logger.Debugf("[audio] ffmpeg 转换: %s → %s (ar=%d ac=%d)", src, dst, c.sampleRate, c.channels)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, c.buildArgs(src, dst)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if msg != "" {
			logger.Warnf("[audio] ffmpeg stderr: %s", msg)
		}
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}

	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: 输出文件缺失或为空", ErrConversion)
	}

	return nil
}
