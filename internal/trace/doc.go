// Package trace records what the formatter spends its time on and where it
// hangs.
//
//	rbfmt fmt --trace=trace.json --trace-level=detail lib/
//
// Spans nest through context. A file span tags every phase span opened
// under it with the file path, so parallel workers stay readable:
//
//	ctx, file := trace.StartFile(ctx, "lib/a.rb")
//	defer file.End("")
//	_, parse := trace.Start(ctx, trace.ScopePhase, "parse")
//	parse.End("")
//
// Sinks: StreamTracer writes events right away (text, NDJSON or a Chrome
// trace document), RingTracer keeps the tail in memory for a dump after a
// failure, MultiTracer feeds both.
//
// Levels: phase shows files, detail adds pipeline phases, debug adds
// meaning nodes. Heartbeats pass at every level except off.
package trace
