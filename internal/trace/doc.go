// Package trace provides span tracing for reflow runs.
//
// Tracing follows a run from the driver down to the individual correction
// passes, which helps find slow bundles and passes that misbehave.
//
// # Usage
//
//	reflow fmt --trace=- --trace-level=detail ./out
//
// # Tracers
//
//   - Nop: no-op tracer used when tracing is off
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events for dumping after a failure
//   - MultiTracer: fans events out to several tracers
//
// # Levels and scopes
//
// LevelPhase emits driver and file spans, LevelDetail adds pass spans and
// LevelDebug emits everything, including per-record events.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "align", parentID)
//	defer span.End("")
package trace
