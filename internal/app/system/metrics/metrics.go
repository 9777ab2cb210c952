// Package metrics records assignment, notification, and sweep counters.
//
// Components take a Recorder. Production wiring uses the Prometheus-backed
// collector; tests and callers that do not care pass Nop.
package metrics

import "time"

// Recorder receives observations from the assignment core.
type Recorder interface {
	// Assignment counts one assignment attempt by activation path
	// ("created", "declined", "sweep") and outcome.
	Assignment(path, outcome string)
	// Notification counts one notification by kind and delivery status.
	Notification(kind, status string)
	// SweepCompleted records a finished sweep.
	SweepCompleted(took time.Duration, assigned int)
	// SweepSkipped counts ticks dropped because a sweep was still running.
	SweepSkipped()
	// EventDropped counts a change event abandoned after a permanent error.
	EventDropped(kind string)
}

// Nop discards everything.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) Assignment(string, string) {}
func (Nop) Notification(string, string) {}
func (Nop) SweepCompleted(time.Duration, int) {}
func (Nop) SweepSkipped() {}

func (Nop) EventDropped(string) {}
