package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sineClip(rate int, freq, duration, amplitude float64) *Clip {
	n := int(duration * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &Clip{Samples: samples, Rate: rate}
}

func TestWAVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	clip := sineClip(22050, 440, 0.25, 0.5)
	if err := EncodeWAVFile(path, clip); err != nil {
		t.Fatalf("EncodeWAVFile: %v", err)
	}

	decoded, err := DecodeWAVFile(path)
	if err != nil {
		t.Fatalf("DecodeWAVFile: %v", err)
	}
	if decoded.Rate != 22050 {
		t.Errorf("rate = %d, want 22050", decoded.Rate)
	}
	if len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("sample count = %d, want %d", len(decoded.Samples), len(clip.Samples))
	}
	for i := range clip.Samples {
		if math.Abs(decoded.Samples[i]-clip.Samples[i]) > 1.0/32768+1e-9 {
			t.Fatalf("sample %d drifted beyond quantization: %v vs %v", i, decoded.Samples[i], clip.Samples[i])
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(path, []byte("this is not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeWAVFile(path); err == nil {
		t.Error("expected decode error for non-WAV data")
	}
}

func TestResampleDuration(t *testing.T) {
	clip := sineClip(16000, 200, 1.0, 0.8)
	up := Resample(clip, 48000)
	if up.Rate != 48000 {
		t.Errorf("rate = %d, want 48000", up.Rate)
	}
	if math.Abs(up.Duration()-1.0) > 0.001 {
		t.Errorf("duration = %v, want ~1.0s", up.Duration())
	}
	// Resampling a tone must roughly preserve its energy.
	if ratio := RMS(up.Samples) / RMS(clip.Samples); ratio < 0.95 || ratio > 1.05 {
		t.Errorf("RMS ratio after resample = %v", ratio)
	}
}

func TestRMSAndPeak(t *testing.T) {
	clip := sineClip(8000, 100, 0.5, 0.4)
	// A sine of amplitude A has RMS A/sqrt(2).
	if got, want := RMS(clip.Samples), 0.4/math.Sqrt2; math.Abs(got-want) > 0.01 {
		t.Errorf("RMS = %v, want ~%v", got, want)
	}
	if got := Peak(clip.Samples); math.Abs(got-0.4) > 0.01 {
		t.Errorf("Peak = %v, want ~0.4", got)
	}
	if RMS(nil) != 0 || Peak(nil) != 0 {
		t.Error("empty input must measure zero")
	}
}

func TestFadeOutSilencesTail(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 1
	}
	FadeOut(samples, 10000, 0.02) // final 200 samples
	if samples[799] != 1 {
		t.Error("fade started too early")
	}
	if samples[999] > 0.01 {
		t.Errorf("last sample = %v, want ~0", samples[999])
	}
	if samples[900] >= samples[850] {
		t.Error("fade is not monotonically decreasing")
	}
}

func TestTimeStretchShortens(t *testing.T) {
	clip := sineClip(16000, 220, 2.0, 0.6)
	stretched, err := TimeStretch(clip, 2.0)
	if err != nil {
		t.Fatalf("TimeStretch: %v", err)
	}
	if math.Abs(stretched.Duration()-1.0) > 0.06 {
		t.Errorf("stretched duration = %v, want ~1.0s", stretched.Duration())
	}
	// Pitch-preserving stretch keeps loudness in the same ballpark.
	if r := RMS(stretched.Samples) / RMS(clip.Samples); r < 0.7 || r > 1.3 {
		t.Errorf("RMS ratio after stretch = %v", r)
	}
}

func TestTimeStretchIdentity(t *testing.T) {
	clip := sineClip(16000, 220, 0.5, 0.6)
	out, err := TimeStretch(clip, 1.0)
	if err != nil {
		t.Fatalf("TimeStretch: %v", err)
	}
	if len(out.Samples) != len(clip.Samples) {
		t.Errorf("identity stretch changed length: %d vs %d", len(out.Samples), len(clip.Samples))
	}
}

func TestTimeStretchRejectsBadRatio(t *testing.T) {
	clip := sineClip(16000, 220, 0.5, 0.6)
	if _, err := TimeStretch(clip, 0); err == nil {
		t.Error("expected error for zero ratio")
	}
	if _, err := TimeStretch(clip, -1); err == nil {
		t.Error("expected error for negative ratio")
	}
}

func TestLowPassAttenuatesHighFrequency(t *testing.T) {
	rate := 44100
	low := sineClip(rate, 500, 0.5, 0.5)
	high := sineClip(rate, 15000, 0.5, 0.5)

	lowRMSBefore := RMS(low.Samples)
	highRMSBefore := RMS(high.Samples)

	LowPass4(low.Samples, rate, 8000)
	LowPass4(high.Samples, rate, 8000)

	if r := RMS(low.Samples) / lowRMSBefore; r < 0.9 {
		t.Errorf("passband attenuated to %v of original", r)
	}
	if r := RMS(high.Samples) / highRMSBefore; r > 0.2 {
		t.Errorf("stopband only attenuated to %v of original", r)
	}
}
