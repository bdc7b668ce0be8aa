package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/iabetor/voxbuddy/internal/audio"
	"github.com/iabetor/voxbuddy/internal/logger"
)

// EdgeEngine 使用微软 Edge TTS 实现语音合成。
// 无声音克隆能力：说话人样本被忽略，始终使用固定的配置语音。
// 作为没有安装 Coqui CLI 的部署环境的备用引擎。
type EdgeEngine struct {
	voice string
}

// NewEdgeEngine 创建指定语音的 Edge TTS 引擎。
func NewEdgeEngine(voice string) *EdgeEngine {
	logger.Warnf("[tts] edge: 此引擎不支持声音克隆，说话人样本将被忽略 (voice=%s)", voice)
	return &EdgeEngine{voice: voice}
}

// Synthesize 将文本合成为音频并写入 outPath。speakerWAV 被忽略。
func (e *EdgeEngine) Synthesize(ctx context.Context, text, speakerWAV, outPath string) error {
	_ = speakerWAV

	logger.Debugf("[tts] edge: 正在合成 %d 个字符，语音=%s", len([]rune(text)), e.voice)

	comm, err := edge.NewCommunicate(text, edge.WithVoice(e.voice))
	if err != nil {
		return fmt.Errorf("edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return fmt.Errorf("edge-tts 开始流式合成失败: %w", err)
	}

	// 从 channel 收集所有 MP3 音频块
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}

	if mp3Buf.Len() == 0 {
		return fmt.Errorf("edge-tts: 未收到音频数据")
	}

	// MP3 → 立体声 16-bit PCM → 单声道 WAV
	decoder, err := mp3.NewDecoder(bytes.NewReader(mp3Buf.Bytes()))
	if err != nil {
		return fmt.Errorf("MP3 解码失败: %w", err)
	}

	pcmData, err := io.ReadAll(decoder)
	if err != nil {
		return fmt.Errorf("读取 PCM 数据失败: %w", err)
	}

	samples := audio.DownmixStereo16(pcmData)
	if err := audio.WriteWAV16(outPath, samples, decoder.SampleRate()); err != nil {
		return fmt.Errorf("写入合成结果失败: %w", err)
	}

	logger.Debugf("[tts] edge: 合成完成 (%d 个样本, %d Hz)", len(samples), decoder.SampleRate())
	return nil
}
