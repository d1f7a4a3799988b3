package whisperx

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleOutput = `{
  "language": "en",
  "segments": [
    {
      "text": " Hello world.",
      "start": 0.5,
      "end": 2.1,
      "speaker": "SPEAKER_00",
      "words": [
        {"word": "Hello", "start": 0.5, "end": 1.0, "score": 0.98},
        {"word": " world.", "start": 1.1, "end": 2.1, "score": 0.95}
      ]
    },
    {
      "text": " Goodbye.",
      "start": 2.5,
      "end": 3.4,
      "words": [
        {"word": "Goodbye.", "start": 2.5, "end": 3.4, "score": 0.9}
      ]
    }
  ]
}`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(doc.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(doc.Segments))
	}
	if doc.Language != "en" {
		t.Errorf("language = %q", doc.Language)
	}
	first := doc.Segments[0]
	if first.ID != 0 || doc.Segments[1].ID != 1 {
		t.Errorf("ids not dense: %d, %d", first.ID, doc.Segments[1].ID)
	}
	if first.Text != "Hello world." {
		t.Errorf("text = %q, want trimmed", first.Text)
	}
	if first.SpeakerID != "SPEAKER_00" {
		t.Errorf("speaker = %q", first.SpeakerID)
	}
	if len(first.Words) != 2 || first.Words[1].Confidence != 0.95 {
		t.Errorf("words not carried: %+v", first.Words)
	}
	if len(doc.Words) != 3 {
		t.Errorf("word pool = %d, want 3", len(doc.Words))
	}
}

func TestParseDocumentRejectsGarbage(t *testing.T) {
	if _, err := ParseDocument([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestTranscribeBuildsCommandAndLoadsOutput(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(source, []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(Config{Model: "large-v3", VADMethod: VADMethodSilero})
	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		// Simulate WhisperX writing its JSON output.
		return os.WriteFile(filepath.Join(dir, "audio.json"), []byte(sampleOutput), 0o644)
	})

	doc, err := svc.Transcribe(context.Background(), source, dir, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotName != UVXCommand {
		t.Errorf("command = %q, want uvx", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"whisperx", "--model large-v3", "--language en", "--vad_method silero", "--device cpu"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if len(doc.Segments) != 2 {
		t.Errorf("segments = %d", len(doc.Segments))
	}
	if doc.Language != "en" {
		t.Errorf("language = %q, want caller override", doc.Language)
	}
}

func TestTranscribeRequiresSource(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.Transcribe(context.Background(), "", t.TempDir(), "en"); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestBuildArgsDiarization(t *testing.T) {
	svc := NewService(Config{VADMethod: VADMethodPyannote, HFToken: "hf_x", Diarize: true})
	args := svc.buildArgs("in.wav", "out", "ja")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--hf_token hf_x") {
		t.Errorf("missing hf token: %s", joined)
	}
	if !strings.Contains(joined, "--diarize") {
		t.Errorf("missing diarize flag: %s", joined)
	}
}

func TestPayloadRoundtripSpeakerOnWords(t *testing.T) {
	// Speaker tags may appear on words only; document still parses.
	raw := map[string]any{
		"segments": []map[string]any{{
			"text":  "hi",
			"start": 0.0,
			"end":   1.0,
			"words": []map[string]any{{"word": "hi", "start": 0.0, "end": 1.0, "speaker": "SPEAKER_01"}},
		}},
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Segments[0].SpeakerID != "" {
		t.Errorf("segment speaker = %q, want empty when only words carry tags", doc.Segments[0].SpeakerID)
	}
}
