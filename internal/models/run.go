package models

import "time"

// Run describes one control session against a simulator
type Run struct {
	ID         string
	ServerAddr string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Cycles     uint64
	Failures   uint64
}
