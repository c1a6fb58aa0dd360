// Package bus wires notification producers to consumers.
//
// A Sender fans every notification out to its connected Receivers in
// connection order. Delivery is a plain synchronous call chain: Send returns
// only after every receiver, and everything those receivers forwarded to,
// has finished. Errors raised anywhere downstream are joined and handed back
// to the caller of Send, so a failing replica makes the originating mutation
// fail.
//
// # Pipes
//
// Pipe forwards unchanged. Filter forwards what a predicate accepts.
// EchoFilter drops, once, each notification id it was told to expect.
// Compositor buffers notifications into nested transaction frames and
// forwards each outermost frame as a single Composite.
//
// # Observers
//
// Counter, Recorder and LogPipe are terminal or pass-through observers used
// by tests, the CLI and diagnostics.
package bus
