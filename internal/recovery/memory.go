package recovery

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/mo9mo9-uwu-mo9mo9/Kumihan-Formatter-sub008/internal/diagnostic"
)

// chunkThreshold is the source size above which chunked processing is
// recommended alongside the reclamation pass.
const chunkThreshold = 10 << 20 // 10 MB

// MemoryStrategy runs an explicit reclamation pass under memory pressure.
// Best-effort: the pass itself cannot fail, so the outcome is a success
// whenever it runs.
type MemoryStrategy struct{}

func (MemoryStrategy) Name() string  { return "memory" }
func (MemoryStrategy) Priority() int { return priorityMemory }

// CanHandle matches system-category records and memory-keyword messages.
// No context keys are required; the pass works on the process itself.
func (MemoryStrategy) CanHandle(rec *diagnostic.Record, ctx *Context) bool {
	if rec.Category == diagnostic.CategorySystem {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Message), "memory")
}

// Attempt forces a collection cycle, returns memory to the OS, and reports
// the heap objects freed. Recommends chunked processing for large sources.
func (s MemoryStrategy) Attempt(rec *diagnostic.Record, ctx *Context) Outcome {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	runtime.GC()
	debug.FreeOSMemory()
	runtime.ReadMemStats(&after)

	freed := int64(before.HeapObjects) - int64(after.HeapObjects)
	if freed < 0 {
		freed = 0
	}

	out := Successf("reclamation pass freed %d heap objects", freed)
	if ctx != nil && ctx.FileSize > chunkThreshold {
		out.Message += "; source exceeds 10 MB, chunked processing recommended"
	}
	return out
}
