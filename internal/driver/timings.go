package driver

import (
	"encoding/json"
	"fmt"

	"argsmat/internal/diag"
	"argsmat/internal/observ"
	"argsmat/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func newTimingPayload(kind, path string, report observ.Report) timingPayload {
	return timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
}

// appendTimingDiagnostic attaches the payload as an ObsTimings note. It is
// added even if the bag is full.
func appendTimingDiagnostic(bag *diag.Bag, file source.FileID, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "run"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s, %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: file}, msg).
		WithNote(source.Span{File: file}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
