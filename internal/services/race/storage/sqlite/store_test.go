package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/racesim/internal/services/race/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "races.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func sampleRace(id string, createdAt time.Time) storage.Race {
	return storage.Race{
		ID:         id,
		Name:       "Autumn Cup",
		CardName:   "autumn",
		CardFormat: "lua",
		CardSource: `return Race.new("Autumn Cup", { distance = 2000 })`,
		Seed:       42,
		Variance:   true,
		Step:       0.05,
		Distance:   2000,
		Course:     "tokyo",
		Ticks:      2410,
		Elapsed:    120.5,
		CreatedAt:  createdAt,
		Results: []storage.Result{
			{Rank: 1, ParticipantID: 1, Name: "Quiet Step", Gate: 2, Finished: true, FinishTime: 119.8, Distance: 2000, TopSpeed: 21.4, Closing: 34.1},
			{Rank: 2, ParticipantID: 0, Name: "Iron Gate", Gate: 1, Finished: true, FinishTime: 120.5, Distance: 2000, TopSpeed: 20.9, Closing: 35.0},
			{Rank: 3, ParticipantID: 2, Name: "Far Turn", Gate: 3, DNF: true, DNFReason: "withdrawn", Distance: 1210.4, TopSpeed: 19.7},
		},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestSaveGetRaceRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	input := sampleRace("race-1", now)
	if err := store.SaveRace(context.Background(), input); err != nil {
		t.Fatalf("save race: %v", err)
	}

	got, err := store.GetRace(context.Background(), "race-1")
	if err != nil {
		t.Fatalf("get race: %v", err)
	}
	if got.Name != input.Name || got.CardSource != input.CardSource || got.Seed != input.Seed {
		t.Fatalf("race = %+v, want %+v", got, input)
	}
	if !got.Variance || got.Step != input.Step || got.Course != input.Course {
		t.Fatalf("race settings = %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
	if len(got.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(got.Results))
	}
	for i, r := range got.Results {
		if r != input.Results[i] {
			t.Fatalf("result %d = %+v, want %+v", i, r, input.Results[i])
		}
	}
}

func TestSaveRaceReturnsAlreadyExistsOnDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := sampleRace("race-dup", time.Now())
	if err := store.SaveRace(context.Background(), input); err != nil {
		t.Fatalf("save initial race: %v", err)
	}
	err := store.SaveRace(context.Background(), input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate save error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetRaceNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetRace(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing race error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListRacesNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"race-a", "race-b", "race-c"} {
		if err := store.SaveRace(context.Background(), sampleRace(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	races, err := store.ListRaces(context.Background(), 2)
	if err != nil {
		t.Fatalf("list races: %v", err)
	}
	if len(races) != 2 || races[0].ID != "race-c" || races[1].ID != "race-b" {
		t.Fatalf("races = %+v, want race-c, race-b", races)
	}
	if races[0].Results != nil {
		t.Fatalf("list returned results: %+v", races[0].Results)
	}

	if _, err := store.ListRaces(context.Background(), 0); err == nil {
		t.Fatal("expected limit error")
	}
}

func TestSaveRaceValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	race := sampleRace(" ", time.Now())
	if err := store.SaveRace(context.Background(), race); err == nil {
		t.Fatal("expected missing id error")
	}
	race = sampleRace("race-x", time.Now())
	race.CardFormat = ""
	if err := store.SaveRace(context.Background(), race); err == nil {
		t.Fatal("expected missing format error")
	}
}
