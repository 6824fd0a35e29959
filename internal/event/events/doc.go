// Package events defines the low-level editing intents the router
// consumes. Each intent corresponds to one host-surface signal fired
// before the surface would mutate content itself; the router handles
// the intent and cancels the default so the pipelines keep sole
// authority over tree shape.
package events
