// Package trace provides structured tracing for code action requests.
//
// Every GetAvailableActions call opens a request span; the pipeline nests
// phase spans (span resolution, fixes, refactorings, ordering, normalize)
// and provider spans below it. Provider faults and broken ordering cycles
// are recorded as point events.
//
// # Usage
//
//	codeact actions --trace=- --trace-level=detail main.go --line 3 --col 7
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr), text or NDJSON
//   - RingTracer: circular buffer, dumped on demand
//   - Tee: fan-out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only error events (provider faults)
//   - LevelPhase: request and phase boundaries
//   - LevelDetail: per-provider invocations
//   - LevelDebug: everything including per-node ordering events
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePhase, "fixes", parentID)
//	defer span.End("")
package trace
