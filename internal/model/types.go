// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Translation string
	Commuter    bool
	PlanPath    string
	FocusWeak   bool
	WeakTop     int
	WeakFactor  float64
	WeakWindow  int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Reference   string
	Translation string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Verse is one numbered verse as returned by a text source.
type Verse struct {
	Number int    `json:"verse"`
	Text   string `json:"text"`
}

// SessionStats captures one finished or abandoned practice attempt.
type SessionStats struct {
	UUID         string
	StartedAt    time.Time
	EndedAt      time.Time
	Reference    string
	Translation  string
	Words        int
	CorrectWords int
	Mistakes     int
	Helps        int
	Progress     int
	Completed    bool
	Revealed     bool
	DurationMs   int64
}

// SessionAggregate summarizes an attempt for reporting.
type SessionAggregate struct {
	SessionID    int64
	UUID         string
	EndedAt      time.Time
	Reference    string
	Translation  string
	Words        int
	CorrectWords int
	Mistakes     int
	Helps        int
	Progress     int
	Completed    bool
	DurationMs   int64
}

// PassageAggregate aggregates attempts of the same passage.
type PassageAggregate struct {
	Reference    string
	Attempts     int
	Completions  int
	Words        int
	Mistakes     int
	Helps        int
	BestProgress int
	LastEndedAt  time.Time
}
