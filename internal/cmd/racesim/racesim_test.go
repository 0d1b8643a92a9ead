package racesim

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/racesim/internal/platform/errors"
	"github.com/louisbranch/racesim/internal/services/race/storage/sqlite"
)

const testCard = `
name: Harbor Mile
race:
  distance: 1600
  course: kyoto
  seed: 99
entrants:
  - name: Bright Pace
    style: PC
    speed: 1000
    stamina: 800
    power: 900
    guts: 500
    wit: 600
  - name: Low Cloud
    style: EC
    speed: 1050
    stamina: 750
    power: 950
    guts: 450
    wit: 650
    skills: [corner_adept]
  - name: Iron Gate
    style: FR
    speed: 980
    stamina: 850
    power: 900
    guts: 600
    wit: 500
`

func writeCard(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harbor.yaml")
	if err := os.WriteFile(path, []byte(testCard), 0o600); err != nil {
		t.Fatalf("write card: %v", err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("racesim", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Step != 0.05 || cfg.Runs != 1 || cfg.Variance || cfg.DBPath != "" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("RACESIM_CARD", "env.lua")
	t.Setenv("RACESIM_RUNS", "4")
	t.Setenv("RACESIM_CADENCE", "20ms")
	t.Setenv("RACESIM_VARIANCE", "true")

	fs := flag.NewFlagSet("racesim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-card", "flag.yaml", "-seed", "12", "-dt", "0.1", "-history", "3"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Card != "flag.yaml" || cfg.Seed != 12 || cfg.Step != 0.1 || cfg.History != 3 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Runs != 4 || cfg.Cadence != 20*time.Millisecond || !cfg.Variance {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing card", Config{Runs: 1}},
		{"zero runs", Config{Card: "x.yaml"}},
		{"replay without db", Config{Replay: "abc", Runs: 1}},
		{"history and replay", Config{Replay: "abc", History: 2, DBPath: "races.db", Runs: 1}},
		{"negative seed", Config{Card: "x.yaml", Runs: 1, Seed: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Run(context.Background(), tt.cfg, nil, nil)
			if code := apperrors.GetCode(err); code != apperrors.CodeInvalidConfig {
				t.Fatalf("code = %v, want %v (%v)", code, apperrors.CodeInvalidConfig, err)
			}
		})
	}
}

func TestRunInvalidCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("race: {distance: -1}\n"), 0o600); err != nil {
		t.Fatalf("write card: %v", err)
	}

	err := Run(context.Background(), Config{Card: path, Runs: 1, Step: 0.05}, nil, nil)
	if code := apperrors.GetCode(err); code != apperrors.CodeInvalidCard {
		t.Fatalf("code = %v, want %v (%v)", code, apperrors.CodeInvalidCard, err)
	}
}

func TestRunSavesAndReplaysRace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "races.db")
	cfg := Config{Card: writeCard(t), Runs: 1, Step: 0.05, DBPath: dbPath}

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Harbor Mile", "seed 99", "(saved)", "winner:", "best performer:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}

	store, err := sqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	races, err := store.ListRaces(context.Background(), 5)
	if closeErr := store.Close(); closeErr != nil {
		t.Fatalf("close store: %v", closeErr)
	}
	if err != nil || len(races) != 1 {
		t.Fatalf("list races = %v, %v", races, err)
	}

	out.Reset()
	if err := Run(context.Background(), Config{Replay: races[0].ID, DBPath: dbPath, Runs: 1}, &out, nil); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out.String(), "matches the stored results") {
		t.Fatalf("replay output:\n%s", out.String())
	}

	out.Reset()
	if err := Run(context.Background(), Config{History: 5, DBPath: dbPath, Runs: 1}, &out, nil); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out.String(), races[0].ID) || !strings.Contains(out.String(), "kyoto") {
		t.Fatalf("history output:\n%s", out.String())
	}

	err = Run(context.Background(), Config{Replay: "missing", DBPath: dbPath, Runs: 1}, &out, nil)
	if code := apperrors.GetCode(err); code != apperrors.CodeNotFound {
		t.Fatalf("code = %v, want %v (%v)", code, apperrors.CodeNotFound, err)
	}
}

func TestRunBatch(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Card: writeCard(t), Runs: 3, Parallel: 2, Step: 0.1, Seed: 5, Variance: true}

	if err := Run(context.Background(), cfg, &out, nil); err != nil {
		t.Fatalf("run batch: %v", err)
	}
	text := out.String()
	for _, want := range []string{"3 races", "wins"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	for _, seed := range []string{"\n5 ", "\n6 ", "\n7 "} {
		if !strings.Contains(text, seed) {
			t.Fatalf("output missing seed row %q:\n%s", seed, text)
		}
	}
}

func TestRunVerboseLogsToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	cfg := Config{Card: writeCard(t), Runs: 1, Step: 0.1, Verbose: true}

	if err := Run(context.Background(), cfg, &out, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(errOut.String(), "phase") {
		t.Fatalf("verbose log missing phases:\n%s", errOut.String())
	}
}
