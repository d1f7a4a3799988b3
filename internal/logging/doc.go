// Package logging assembles the structured slog loggers used across Dubforge.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so stage code automatically tags log
// lines with task ids and stage names. Prefer these constructors over
// hand-rolled slog setup so every component emits data with the same shape.
package logging
