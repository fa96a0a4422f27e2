package api

import (
	"github.com/adf-bdd/benchdock/internal/driver"
)

// Event type strings pushed to SSE and websocket clients
const (
	EventRunStarted    = "run_started"
	EventRunFinished   = "run_finished"
	EventBatchFinished = "batch_finished"
)

// RunEvent is the payload for run lifecycle events
type RunEvent struct {
	BatchID     string  `json:"batch_id"`
	Seq         int     `json:"seq,omitempty"`
	Input       string  `json:"input,omitempty"`
	Outcome     string  `json:"outcome,omitempty"`
	ExitCode    int     `json:"exit_code,omitempty"`
	ElapsedSecs float64 `json:"elapsed_secs,omitempty"`
	Active      int     `json:"active"`
	Pending     int     `json:"pending"`
}

// DriverSink returns an event callback for driver.New that pushes run
// progress to every connected SSE and websocket client. The server's hubs
// must be running (Start does that) before the batch dispatches.
func (s *Server) DriverSink() func(driver.Event) {
	return func(ev driver.Event) {
		s.Broadcast(fromDriverEvent(ev))
	}
}

func fromDriverEvent(ev driver.Event) Event {
	data := RunEvent{Active: ev.Active, Pending: ev.Pending}
	if ev.Batch != nil {
		data.BatchID = ev.Batch.ID
	}
	if ev.Run != nil {
		data.Seq = ev.Run.Seq
		data.Input = ev.Run.InputPath
		data.Outcome = string(ev.Run.Outcome)
		data.ExitCode = ev.Run.ExitCode
		data.ElapsedSecs = ev.Run.Elapsed.Seconds()
	}

	out := Event{Data: data}
	switch ev.Type {
	case driver.EventRunStarted:
		out.Type = EventRunStarted
	case driver.EventRunFinished:
		out.Type = EventRunFinished
	case driver.EventBatchFinished:
		out.Type = EventBatchFinished
	}
	return out
}
