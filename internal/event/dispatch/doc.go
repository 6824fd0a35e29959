// Package dispatch executes intent handlers synchronously with panic
// recovery.
//
// The executor is the engine's operation boundary: an editing surface
// must never abandon a user's document mid-edit, so a handler panic is
// captured with its stack and converted into a failed Result instead
// of propagating to the host. Handlers run in the caller's goroutine,
// in dispatch order.
package dispatch
