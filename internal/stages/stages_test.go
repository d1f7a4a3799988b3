package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubforge/internal/audio"
	"dubforge/internal/config"
	"dubforge/internal/media"
	"dubforge/internal/queue"
	"dubforge/internal/segment"
	"dubforge/internal/services/demucs"
	"dubforge/internal/services/translator"
	"dubforge/internal/services/voiceclone"
	"dubforge/internal/services/whisperx"
	"dubforge/internal/timeline"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Languages.Source = "en"
	cfg.Languages.Target = "es"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

func newTask(t *testing.T, cfg *config.Config) *queue.Task {
	t.Helper()
	source := filepath.Join(t.TempDir(), "show.mkv")
	if err := os.WriteFile(source, []byte("container"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &queue.Task{
		ID:             1,
		SourcePath:     source,
		SourceLanguage: "en",
		TargetLanguage: "es",
		Status:         queue.StatusPending,
	}
}

func fakeToolset(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) *media.Toolset {
	tools := media.NewToolset("", "")
	tools.WithCommandOutput(runner)
	return tools
}

func writeSine(t *testing.T, path string, freq float64, duration float64, rate int) {
	t.Helper()
	n := int(duration * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	if err := audio.EncodeWAVFile(path, &audio.Clip{Samples: samples, Rate: rate}); err != nil {
		t.Fatal(err)
	}
}

func TestSeparatorWithoutStems(t *testing.T) {
	cfg := testConfig(t)
	cfg.Separation.Enabled = false
	task := newTask(t, cfg)

	tools := fakeToolset(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})
	sep := NewSeparator(cfg, nil, tools, demucs.NewService(demucs.Config{}))

	if err := sep.Prepare(context.Background(), task); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if task.Title != "show" {
		t.Errorf("title = %q, want derived from source", task.Title)
	}
	if err := sep.Execute(context.Background(), task); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if filepath.Base(task.AudioPath) != audioFileName {
		t.Errorf("audio path = %q", task.AudioPath)
	}
	if task.VocalStemPath != "" || task.BackgroundStemPath != "" {
		t.Error("stems must stay empty when separation is disabled")
	}
}

func TestSeparatorWithStems(t *testing.T) {
	cfg := testConfig(t)
	cfg.Separation.Enabled = true
	task := newTask(t, cfg)

	tools := fakeToolset(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})
	svc := demucs.NewService(demucs.Config{})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		stemDir := filepath.Join(TaskStagingDir(cfg, task), demucs.DefaultModel, "audio")
		if err := os.MkdirAll(stemDir, 0o755); err != nil {
			return err
		}
		for _, stem := range []string{"vocals.wav", "no_vocals.wav"} {
			if err := os.WriteFile(filepath.Join(stemDir, stem), []byte("riff"), 0o644); err != nil {
				return err
			}
		}
		return nil
	})
	sep := NewSeparator(cfg, nil, tools, svc)

	if err := sep.Prepare(context.Background(), task); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := sep.Execute(context.Background(), task); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if task.VocalStemPath == "" || task.BackgroundStemPath == "" {
		t.Errorf("stems not recorded: %+v", task)
	}
}

func TestSeparatorPrepareMissingSource(t *testing.T) {
	cfg := testConfig(t)
	task := newTask(t, cfg)
	task.SourcePath = filepath.Join(t.TempDir(), "absent.mkv")

	sep := NewSeparator(cfg, nil, fakeToolset(nil), demucs.NewService(demucs.Config{}))
	if err := sep.Prepare(context.Background(), task); err == nil {
		t.Error("expected error for missing source")
	}
}

const whisperFixture = `{
  "language": "en",
  "segments": [
    {
      "text": " Hello world.",
      "start": 0.5,
      "end": 2.1,
      "words": [
        {"word": "Hello", "start": 0.5, "end": 1.0, "score": 0.98},
        {"word": " world.", "start": 1.1, "end": 2.1, "score": 0.95}
      ]
    }
  ]
}`

func TestTranscriberProducesDocument(t *testing.T) {
	cfg := testConfig(t)
	task := newTask(t, cfg)
	task.AudioPath = filepath.Join(TaskStagingDir(cfg, task), audioFileName)
	if err := os.MkdirAll(TaskStagingDir(cfg, task), 0o755); err != nil {
		t.Fatal(err)
	}

	tools := fakeToolset(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})
	svc := whisperx.NewService(whisperx.Config{})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		base := strings.TrimSuffix(whisperInputFileName, filepath.Ext(whisperInputFileName))
		return os.WriteFile(filepath.Join(TaskStagingDir(cfg, task), base+".json"), []byte(whisperFixture), 0o644)
	})
	tr := NewTranscriber(cfg, nil, tools, svc)

	if err := tr.Prepare(context.Background(), task); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := tr.Execute(context.Background(), task); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if task.SegmentsPath == "" {
		t.Fatal("segments path not set")
	}
	doc, err := segment.LoadDocument(task.SegmentsPath)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.Segments) != 1 || doc.Segments[0].Text != "Hello world." {
		t.Errorf("doc = %+v", doc.Segments)
	}
	if doc.Language != "en" {
		t.Errorf("language = %q", doc.Language)
	}
}

func TestTranscriberPrepareRequiresAudio(t *testing.T) {
	cfg := testConfig(t)
	task := newTask(t, cfg)
	tr := NewTranscriber(cfg, nil, fakeToolset(nil), whisperx.NewService(whisperx.Config{}))
	if err := tr.Prepare(context.Background(), task); err == nil {
		t.Error("expected error without audio path")
	}
}

func TestTranslatorFillsTranslations(t *testing.T) {
	cfg := testConfig(t)
	task := newTask(t, cfg)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, _ := json.Marshal(map[string]any{"translations": []string{"Hola mundo."}})
		payload := map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": string(out)}}},
		}
		data, _ := json.Marshal(payload)
		w.Write(data)
	}))
	defer server.Close()

	doc := &segment.Document{
		Language: "en",
		Segments: []segment.Segment{{ID: 0, Start: 0.5, End: 2.1, Text: "Hello world."}},
	}
	task.SegmentsPath = filepath.Join(t.TempDir(), segmentsFileName)
	if err := segment.SaveDocument(task.SegmentsPath, doc); err != nil {
		t.Fatal(err)
	}

	client := translator.NewClient(translator.Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	tr := NewTranslator(cfg, nil, client)

	if err := tr.Prepare(context.Background(), task); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := tr.Execute(context.Background(), task); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	saved, err := segment.LoadDocument(task.SegmentsPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Segments[0].TranslatedText != "Hola mundo." {
		t.Errorf("translated = %q", saved.Segments[0].TranslatedText)
	}
}

func TestSynthesizerClipsAndClones(t *testing.T) {
	cfg := testConfig(t)
	task := newTask(t, cfg)
	task.AudioPath = filepath.Join(TaskStagingDir(cfg, task), audioFileName)

	doc := &segment.Document{
		Segments: []segment.Segment{
			{ID: 0, Start: 0.5, End: 2.1, Text: "Hello world.", TranslatedText: "Hola mundo."},
			{ID: 1, Start: 3.0, End: 4.0, Text: "Bye.", TranslatedText: "Adiós."},
		},
	}
	task.SegmentsPath = filepath.Join(t.TempDir(), segmentsFileName)
	if err := segment.SaveDocument(task.SegmentsPath, doc); err != nil {
		t.Fatal(err)
	}

	tools := fakeToolset(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	})
	voice := voiceclone.NewService(voiceclone.Config{})
	voice.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		// The output path is the last template argument in the default command.
		return os.WriteFile(args[len(args)-1], []byte("riff"), 0o644)
	})
	syn := NewSynthesizer(cfg, nil, tools, voice)

	if err := syn.Prepare(context.Background(), task); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := syn.Execute(context.Background(), task); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	saved, err := segment.LoadDocument(task.SegmentsPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, seg := range saved.Segments {
		wantRef := fmt.Sprintf("seg_%d_ref.wav", seg.ID)
		if filepath.Base(seg.ReferenceAudioPath) != wantRef {
			t.Errorf("reference path = %q, want %q", seg.ReferenceAudioPath, wantRef)
		}
		wantCloned := fmt.Sprintf("seg_%d_cloned.wav", seg.ID)
		if filepath.Base(seg.ClonedAudioPath) != wantCloned {
			t.Errorf("cloned path = %q, want %q", seg.ClonedAudioPath, wantCloned)
		}
	}
	if task.ProgressPercent != 100 {
		t.Errorf("progress = %v", task.ProgressPercent)
	}
}

func TestSynthesizerRequiresTranslations(t *testing.T) {
	cfg := testConfig(t)
	task := newTask(t, cfg)
	task.AudioPath = "/tmp/audio.wav"

	doc := &segment.Document{
		Segments: []segment.Segment{{ID: 0, Start: 0, End: 1, Text: "Hello."}},
	}
	task.SegmentsPath = filepath.Join(t.TempDir(), segmentsFileName)
	if err := segment.SaveDocument(task.SegmentsPath, doc); err != nil {
		t.Fatal(err)
	}

	syn := NewSynthesizer(cfg, nil, fakeToolset(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	}), voiceclone.NewService(voiceclone.Config{}))
	if err := syn.Prepare(context.Background(), task); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := syn.Execute(context.Background(), task); err == nil {
		t.Error("expected error for untranslated segment")
	}
}

func TestRendererProducesDubbedOutput(t *testing.T) {
	cfg := testConfig(t)
	task := newTask(t, cfg)
	task.Title = "show"
	staging := TaskStagingDir(cfg, task)
	if err := os.MkdirAll(filepath.Join(staging, clipsDirName), 0o755); err != nil {
		t.Fatal(err)
	}

	const rate = 44100
	task.AudioPath = filepath.Join(staging, audioFileName)
	writeSine(t, task.AudioPath, 220, 5.0, rate)
	clonedPath := filepath.Join(staging, clipsDirName, "seg_0_cloned.wav")
	writeSine(t, clonedPath, 440, 1.0, rate)

	doc := &segment.Document{
		Segments: []segment.Segment{{
			ID: 0, Start: 1.0, End: 2.2,
			Text: "Hello.", TranslatedText: "Hola.",
			ClonedAudioPath: clonedPath,
		}},
	}
	task.SegmentsPath = filepath.Join(staging, segmentsFileName)
	if err := segment.SaveDocument(task.SegmentsPath, doc); err != nil {
		t.Fatal(err)
	}

	muxed := false
	tools := fakeToolset(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name == media.FFprobeCommand {
			return []byte(`{"format": {"duration": "5.0"}}`), nil
		}
		muxed = true
		return nil, nil
	})
	engine, err := timeline.NewEngine(timeline.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ren := NewRenderer(cfg, nil, tools, engine)

	if err := ren.Prepare(context.Background(), task); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := ren.Execute(context.Background(), task); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !muxed {
		t.Error("mux never invoked")
	}
	if task.RenderedPath == "" {
		t.Fatal("rendered path not set")
	}
	clip, err := audio.DecodeWAVFile(task.RenderedPath)
	if err != nil {
		t.Fatalf("decode rendered track: %v", err)
	}
	if got := clip.Duration(); math.Abs(got-5.0) > 0.01 {
		t.Errorf("rendered duration = %v, want 5.0", got)
	}
	if filepath.Base(task.FinalPath) != "show_dubbed.mkv" {
		t.Errorf("final path = %q", task.FinalPath)
	}
}
