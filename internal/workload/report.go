package workload

import (
	"fmt"
	"io"
	"text/template"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
)

// Result summarizes a finished churn run.
type Result struct {
	RunID         uuid.UUID `json:"run_id"`
	Seed          uint64    `json:"seed"`
	Operations    int       `json:"operations"`
	Counters      Counters  `json:"counters"`
	FinalLive     int       `json:"final_live"`
	Capacity      int       `json:"capacity"`
	FreeSlots     int       `json:"free_slots"`
	ElapsedMillis float64   `json:"elapsed_ms"`
	OpsPerSecond  float64   `json:"ops_per_second"`
}

const resultTemplate = `
# Slot Map Churn Report

## Run
- **Run ID:** {{.RunID}}
- **Seed:** {{.Seed}}
- **Operations:** {{.Operations}}

## Operations
- Inserts:       {{.Counters.Inserts}}
- Removes:       {{.Counters.Removes}}
- Gets:          {{.Counters.Gets}}
- Stale checks:  {{.Counters.StaleChecks}}
- Verifications: {{.Counters.Verifications}}

## Final State
- **Live:** {{.FinalLive}} (peak {{.Counters.PeakLive}})
- **Capacity:** {{.Capacity}}
- **Free Slots:** {{.FreeSlots}}
- **Density:** {{pct .FinalLive .Capacity}}

## Throughput
- **Elapsed:** {{printf "%.3f" .ElapsedMillis}} ms
- **Ops/sec:** {{printf "%.0f" .OpsPerSecond}}
`

var reportFuncs = template.FuncMap{
	"pct": func(a, b int) string {
		if b == 0 {
			return "N/A"
		}
		return fmt.Sprintf("%.1f%%", float64(a)*100/float64(b))
	},
	"mb": func(v uint64) string {
		return fmt.Sprintf("%.2f MiB", float64(v)/1024/1024)
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
}

var resultTmpl = template.Must(template.New("result").Funcs(reportFuncs).Parse(resultTemplate))

// WriteText renders the result as a markdown report.
func (r *Result) WriteText(w io.Writer) error {
	if err := resultTmpl.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteJSON writes the result as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	return writeJSON(w, r)
}

func writeJSON(w io.Writer, v any) error {
	if err := json.MarshalWrite(w, v, jsontext.WithIndent("  ")); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
