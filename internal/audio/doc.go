// Package audio provides the pure-Go PCM layer the timeline engine builds on:
// WAV decode/encode, resampling, loudness measurement, fades, filtering, and
// pitch-preserving time-stretch.
//
// Clips are mono float64 sample buffers in [-1, 1] with an explicit sample
// rate. Decoding never trusts filenames or metadata elsewhere in the system;
// rate and duration always come from the file itself.
package audio
