package voiceclone

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSynthesizeExpandsTemplate(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "clips", "seg_0_cloned.wav")

	svc := NewService(Config{Command: "tts --ref {ref_audio} --text {text} --lang {language} --out {output}"})
	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(out, []byte("riff"), 0o644)
	})

	err := svc.Synthesize(context.Background(), Request{
		Text:               "hola a todos",
		ReferenceAudioPath: "/refs/seg_0_ref.wav",
		OutputPath:         out,
		LanguageCode:       "es",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotName != "tts" {
		t.Errorf("command = %q", gotName)
	}
	want := []string{"--ref", "/refs/seg_0_ref.wav", "--text", "hola a todos", "--lang", "es", "--out", out}
	if len(gotArgs) != len(want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, gotArgs[i], want[i])
		}
	}
}

func TestSynthesizeRejectsEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "clip.wav")

	svc := NewService(Config{})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return os.WriteFile(out, nil, 0o644)
	})

	err := svc.Synthesize(context.Background(), Request{
		Text:               "hello",
		ReferenceAudioPath: "/refs/r.wav",
		OutputPath:         out,
	})
	if err == nil {
		t.Error("expected error for empty output file")
	}
}

func TestSynthesizeValidatesRequest(t *testing.T) {
	svc := NewService(Config{})
	tests := []struct {
		name string
		req  Request
	}{
		{"missing text", Request{ReferenceAudioPath: "r.wav", OutputPath: "o.wav"}},
		{"missing reference", Request{Text: "hi", OutputPath: "o.wav"}},
		{"missing output", Request{Text: "hi", ReferenceAudioPath: "r.wav"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Synthesize(context.Background(), tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCommandReturnsExecutable(t *testing.T) {
	svc := NewService(Config{})
	if got := svc.Command(); got != "uvx" {
		t.Errorf("Command() = %q, want uvx from default template", got)
	}
}
