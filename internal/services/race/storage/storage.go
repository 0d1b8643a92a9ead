// Package storage defines persistence contracts for finished races.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested race record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a race with the same id is already stored.
	ErrAlreadyExists = errors.New("record already exists")
)

// Race stores one finished race with enough of its input to replay it.
type Race struct {
	ID   string
	Name string
	// CardName, CardFormat and CardSource are the race card as loaded.
	CardName   string
	CardFormat string
	CardSource string
	Seed       int64
	Variance   bool
	Step       float64
	Distance   float64
	Course     string
	Ticks      int
	Elapsed    float64
	CreatedAt  time.Time
	// Results are in final rank order. List queries leave them empty.
	Results []Result
}

// Result stores one participant's final line.
type Result struct {
	Rank          int
	ParticipantID int
	Name          string
	Gate          int
	Finished      bool
	FinishTime    float64
	DNF           bool
	DNFReason     string
	Distance      float64
	TopSpeed      float64
	Closing       float64
}

// RaceStore persists finished races.
type RaceStore interface {
	SaveRace(ctx context.Context, race Race) error
	GetRace(ctx context.Context, id string) (Race, error)
	// ListRaces returns up to limit races, newest first, without results.
	ListRaces(ctx context.Context, limit int) ([]Race, error)
}
