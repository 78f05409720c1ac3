package workload

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/gidstore/ecs"
)

// SceneReport summarizes a finished scene run. Raw durations and memory
// statistics feed the text report; the JSON form carries the summary fields.
type SceneReport struct {
	RunID     uuid.UUID `json:"run_id"`
	Seed      uint64    `json:"seed"`
	Entities  int       `json:"entities"`
	Frames    int       `json:"frames"`
	Spawned   int       `json:"spawned"`
	Despawned int       `json:"despawned"`

	TotalTime     time.Duration        `json:"-"`
	FrameTime     FrameStats           `json:"-"`
	MemStatsStart runtime.MemStats     `json:"-"`
	MemStatsEnd   runtime.MemStats     `json:"-"`
	Storage       *ecs.StorageStats    `json:"-"`
	Scheduler     *ecs.SchedulerStats  `json:"-"`
	Components    []ecs.ComponentStats `json:"components"`

	FinalEntities  int     `json:"final_entities"`
	TotalMillis    float64 `json:"total_ms"`
	AvgFrameMillis float64 `json:"avg_frame_ms"`
	MinFrameMillis float64 `json:"min_frame_ms"`
	MaxFrameMillis float64 `json:"max_frame_ms"`
	HeapAllocStart uint64  `json:"heap_alloc_start"`
	HeapAllocEnd   uint64  `json:"heap_alloc_end"`
	NumGC          uint32  `json:"num_gc"`
}

// FrameStats holds per-frame timings.
type FrameStats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *FrameStats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func millis(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

func (r *SceneReport) fillSummary() {
	if r.Storage != nil {
		r.FinalEntities = r.Storage.EntityCount
		r.Components = r.Storage.ComponentBreakdown
	}
	r.TotalMillis = millis(r.TotalTime)
	r.AvgFrameMillis = millis(r.FrameTime.Avg)
	r.MinFrameMillis = millis(r.FrameTime.Min)
	r.MaxFrameMillis = millis(r.FrameTime.Max)
	r.HeapAllocStart = r.MemStatsStart.HeapAlloc
	r.HeapAllocEnd = r.MemStatsEnd.HeapAlloc
	r.NumGC = r.MemStatsEnd.NumGC - r.MemStatsStart.NumGC
}

const sceneTemplate = `
# ECS Scene Report

## Configuration
- **Run ID:** {{.RunID}}
- **Seed:** {{.Seed}}
- **Initial Entities:** {{.Entities}}
- **Frames:** {{.Frames}}

## Churn
- **Replaced Entities:** {{.Despawned}}
- **Final Entities:** {{.FinalEntities}}
{{- with .Storage}}
- **Free Entity Slots:** {{.FreeEntitySlots}}
{{- range .ComponentBreakdown}}
  - {{.Type}}: {{.Count}}
{{- end}}
{{- end}}

## Performance
- **Total Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}
{{- with .Scheduler}}
{{- range .Systems}}
  - {{.Name}}: avg {{.AvgDuration}}, max {{.MaxDuration}}
{{- end}}
{{- end}}

## Memory Usage
- Heap Alloc:  {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}} bytes
- Total Alloc: {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end)
- Num GC:      {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

var sceneTmpl = template.Must(template.New("scene").Funcs(reportFuncs).Parse(sceneTemplate))

// WriteText renders the report as markdown.
func (r *SceneReport) WriteText(w io.Writer) error {
	if err := sceneTmpl.Execute(w, r); err != nil {
		return fmt.Errorf("render scene report: %w", err)
	}
	return nil
}

// WriteJSON writes the summary fields as indented JSON.
func (r *SceneReport) WriteJSON(w io.Writer) error {
	return writeJSON(w, r)
}
