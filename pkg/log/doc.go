// Package log provides structured protocol tracing for the ULE clients.
//
// Clients emit an Event for every frame and decoded message that crosses
// the wire, plus connection state changes and recovered errors. The Logger
// is injected at client construction and defaults to NoopLogger; FileLogger
// persists events as a CBOR stream that Reader can replay.
package log
