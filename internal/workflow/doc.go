// Package workflow polls the task queue and drives each task through the
// dubbing pipeline: separate, transcribe, translate, synthesize, render.
//
// The manager owns all queue status transitions. Stage handlers only mutate
// task fields; the manager persists them and classifies failures into failed
// or review via the services error markers.
package workflow
