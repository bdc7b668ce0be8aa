package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeTTS 在临时目录写入一个模拟 Coqui tts CLI 的 shell 脚本。
func fakeTTS(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tts script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "tts")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("write fake tts: %v", err)
	}
	return path
}

const cloningHelp = `echo "usage: tts --text T --model_name M --speaker_wav W --out_path O"`

// cloningSynth 支持克隆的完整脚本：--help 打印能力，其余调用写出音频。
const cloningSynth = `if [ "$1" = "--help" ]; then
  ` + cloningHelp + `
  exit 0
fi
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--out_path" ]; then out="$2"; fi
  shift
done
printf 'fake-wav-bytes' > "$out"`

func TestNewCoquiEngine_CapabilityProbe(t *testing.T) {
	binary := fakeTTS(t, cloningSynth)
	if _, err := NewCoquiEngine(binary, "test-model"); err != nil {
		t.Fatalf("engine with --speaker_wav support should initialize: %v", err)
	}
}

func TestNewCoquiEngine_NoCloningCapability(t *testing.T) {
	binary := fakeTTS(t, `echo "usage: tts --text T --out_path O"`)
	_, err := NewCoquiEngine(binary, "test-model")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for non-cloning CLI, got %v", err)
	}
}

func TestNewCoquiEngine_BinaryMissing(t *testing.T) {
	_, err := NewCoquiEngine(filepath.Join(t.TempDir(), "no-such-tts"), "test-model")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for missing binary, got %v", err)
	}
}

func TestCoquiEngine_Synthesize(t *testing.T) {
	binary := fakeTTS(t, cloningSynth)
	engine, err := NewCoquiEngine(binary, "test-model")
	if err != nil {
		t.Fatalf("NewCoquiEngine: %v", err)
	}

	out := filepath.Join(t.TempDir(), "reply.wav")
	if err := engine.Synthesize(context.Background(), "hello", "speaker.wav", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "fake-wav-bytes" {
		t.Errorf("output content mismatch: %q", data)
	}
}

func TestCoquiEngine_Synthesize_CommandFails(t *testing.T) {
	binary := fakeTTS(t, `if [ "$1" = "--help" ]; then
  `+cloningHelp+`
  exit 0
fi
echo "model load failed" >&2
exit 1`)
	engine, err := NewCoquiEngine(binary, "test-model")
	if err != nil {
		t.Fatalf("NewCoquiEngine: %v", err)
	}

	out := filepath.Join(t.TempDir(), "reply.wav")
	if err := engine.Synthesize(context.Background(), "hello", "speaker.wav", out); err == nil {
		t.Fatal("Synthesize should fail when the CLI exits non-zero")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no output file should exist after a failed synthesis")
	}
}

func TestCoquiEngine_Synthesize_NoOutputFile(t *testing.T) {
	// 退出码 0 但未写出文件，同样视为失败
	binary := fakeTTS(t, `if [ "$1" = "--help" ]; then
  `+cloningHelp+`
  exit 0
fi
exit 0`)
	engine, err := NewCoquiEngine(binary, "test-model")
	if err != nil {
		t.Fatalf("NewCoquiEngine: %v", err)
	}

	out := filepath.Join(t.TempDir(), "reply.wav")
	if err := engine.Synthesize(context.Background(), "hello", "speaker.wav", out); err == nil {
		t.Fatal("Synthesize should fail when no output file is produced")
	}
}

func TestCoquiEngine_BuildArgs(t *testing.T) {
	e := &CoquiEngine{binary: "tts", model: "m1"}
	got := e.buildArgs("hi", "spk.wav", "out.wav")
	want := []string{"--model_name", "m1", "--text", "hi", "--speaker_wav", "spk.wav", "--out_path", "out.wav"}
	if len(got) != len(want) {
		t.Fatalf("args length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}
