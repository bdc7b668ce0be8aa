package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeFFmpeg 在临时目录写入一个模拟 ffmpeg 的 shell 脚本。
// 参数布局固定为 -y -i SRC -ar R -ac C DST -loglevel error，
// 因此 $3 是输入、$8 是输出。
func fakeFFmpeg(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	return path
}

func TestConverter_BuildArgs(t *testing.T) {
	c := NewConverter("ffmpeg", 22050, 1)
	got := c.buildArgs("in.ogg", "out.wav")
	want := []string{"-y", "-i", "in.ogg", "-ar", "22050", "-ac", "1", "out.wav", "-loglevel", "error"}

	if len(got) != len(want) {
		t.Fatalf("args length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConverter_Convert_Success(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `cp "$3" "$8"`)
	c := NewConverter(ffmpeg, 22050, 1)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.ogg")
	dst := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(src, []byte("audio-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := c.Convert(context.Background(), src, dst); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, []byte("audio-bytes")) {
		t.Error("output content mismatch")
	}
}

func TestConverter_Convert_NonZeroExit(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `echo "boom" >&2; exit 1`)
	c := NewConverter(ffmpeg, 22050, 1)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.ogg")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := c.Convert(context.Background(), src, filepath.Join(dir, "out.wav"))
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
}

func TestConverter_Convert_EmptyOutput(t *testing.T) {
	// 退出码 0 但产出空文件，同样视为转换失败
	ffmpeg := fakeFFmpeg(t, `: > "$8"`)
	c := NewConverter(ffmpeg, 22050, 1)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.ogg")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := c.Convert(context.Background(), src, filepath.Join(dir, "out.wav"))
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion for empty output, got %v", err)
	}
}

func TestConverter_Convert_MissingOutput(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, `exit 0`)
	c := NewConverter(ffmpeg, 22050, 1)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.ogg")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := c.Convert(context.Background(), src, filepath.Join(dir, "out.wav"))
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion for missing output, got %v", err)
	}
}

func TestConverter_Convert_Reconversion(t *testing.T) {
	// 规范化后的文件再次转换应保持内容稳定（参数相同）
	ffmpeg := fakeFFmpeg(t, `cp "$3" "$8"`)
	c := NewConverter(ffmpeg, 22050, 1)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.ogg")
	first := filepath.Join(dir, "first.wav")
	second := filepath.Join(dir, "second.wav")
	if err := os.WriteFile(src, []byte("normalized"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := c.Convert(context.Background(), src, first); err != nil {
		t.Fatal(err)
	}
	if err := c.Convert(context.Background(), first, second); err != nil {
		t.Fatal(err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Error("re-conversion of a normalized file should be stable")
	}
}

func TestConverter_Convert_BinaryNotFound(t *testing.T) {
	c := NewConverter(filepath.Join(t.TempDir(), "no-such-ffmpeg"), 22050, 1)
	dir := t.TempDir()
	src := filepath.Join(dir, "in.ogg")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := c.Convert(context.Background(), src, filepath.Join(dir, "out.wav"))
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	if !strings.Contains(err.Error(), "音频转换失败") {
		t.Errorf("error should mention conversion failure: %v", err)
	}
}
