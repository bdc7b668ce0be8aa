package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

// wavHeaderSize RIFF/WAVE 头的固定大小（PCM 格式）。
const wavHeaderSize = 44

// DownmixStereo16 将立体声 signed 16-bit LE PCM 字节降混为单声道 int16 样本。
// 左右声道取平均；不完整的尾部帧被丢弃。
func DownmixStereo16(pcm []byte) []int16 {
	const bytesPerFrame = 4 // 左 2 字节 + 右 2 字节
	n := len(pcm) / bytesPerFrame
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		offset := i * bytesPerFrame
		left := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[offset+2 : offset+4]))
		out[i] = int16((int32(left) + int32(right)) / 2)
	}
	return out
}

// Int16ToBytes 将 int16 样本转换为小端字节切片。
func Int16ToBytes(in []int16) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// BytesToInt16 将小端字节切片转换为 int16 样本。
func BytesToInt16(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

// WriteWAV16 把单声道 16-bit PCM 样本以 WAV 格式写入 path。
func WriteWAV16(path string, samples []int16, sampleRate int) error {
	data := Int16ToBytes(samples)

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(wavHeaderSize-8+len(data)))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16) // fmt 块大小
	binary.LittleEndian.PutUint16(header[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:], 1)  // 单声道
	binary.LittleEndian.PutUint32(header[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:], uint32(sampleRate*2)) // 字节率
	binary.LittleEndian.PutUint16(header[32:], 2)                    // 块对齐
	binary.LittleEndian.PutUint16(header[34:], 16)                   // 位深

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(len(data)))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 WAV 文件失败: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("写入 WAV 头失败: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("写入 PCM 数据失败: %w", err)
	}
	return nil
}
