// Package stages holds the concrete pipeline stage handlers: separate,
// transcribe, translate, synthesize, and render.
//
// Each handler implements stage.Handler. Handlers mutate the task in place
// and leave persistence and status transitions to the workflow manager.
package stages
