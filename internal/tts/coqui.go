package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/iabetor/voxbuddy/internal/logger"
)

// CoquiEngine 通过 Coqui TTS 命令行工具实现带说话人克隆的语音合成。
// 克隆能力（--speaker_wav 参数）在创建时探测一次，而不是每次请求时探测。
type CoquiEngine struct {
	binary string
	model  string
}

// NewCoquiEngine 创建 Coqui TTS 引擎并探测其克隆能力。
// binary 不存在或其帮助输出中没有 --speaker_wav 参数时返回包裹
// ErrUnavailable 的错误。
func NewCoquiEngine(binary, model string) (*CoquiEngine, error) {
	out, err := exec.Command(binary, "--help").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: 执行 %s --help 失败: %v", ErrUnavailable, binary, err)
	}
	if !strings.Contains(string(out), "--speaker_wav") {
		return nil, fmt.Errorf("%w: %s 不支持 --speaker_wav（无声音克隆能力）", ErrUnavailable, binary)
	}

	logger.Infof("[tts] coqui: 引擎已就绪 (binary=%s model=%s)", binary, model)
	return &CoquiEngine{binary: binary, model: model}, nil
}

// buildArgs 构造合成命令行参数。
func (e *CoquiEngine) buildArgs(text, speakerWAV, outPath string) []string {
	return []string{
		"--model_name", e.model,
		"--text", text,
		"--speaker_wav", speakerWAV,
		"--out_path", outPath,
	}
}

// Synthesize 调用 tts CLI 将文本合成为参考样本风格的音频。
func (e *CoquiEngine) Synthesize(ctx context.Context, text, speakerWAV, outPath string) error {
	logger.Debugf("[tts] coqui: 正在合成 %d 个字符 (speaker=%s)", len([]rune(text)), speakerWAV)

	cmd := exec.CommandContext(ctx, e.binary, e.buildArgs(text, speakerWAV, outPath)...)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(output.String())
		if msg != "" {
			logger.Warnf("[tts] coqui 输出: %s", msg)
		}
		return fmt.Errorf("tts 命令执行失败: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("tts 命令未产出音频文件: %s", outPath)
	}

	logger.Debugf("[tts] coqui: 合成完成 (%d 字节)", info.Size())
	return nil
}
