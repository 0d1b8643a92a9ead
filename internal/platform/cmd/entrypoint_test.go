package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Card string `env:"CMD_TEST_CARD" envDefault:"cards/derby.lua"`
	Runs int    `env:"CMD_TEST_RUNS" envDefault:"1"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("RACESIM_CMD_TEST_CARD", "env.lua")
	t.Setenv("RACESIM_CMD_TEST_RUNS", "4")

	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringVar(&cfg.Card, "card", cfg.Card, "card")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "runs")

	if err := ParseArgs(fs, []string{"-card", "flag.yaml"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Card != "flag.yaml" {
		t.Fatalf("card = %q, want flag.yaml", cfg.Card)
	}
	if cfg.Runs != 4 {
		t.Fatalf("runs = %d, want 4", cfg.Runs)
	}
}

func TestParseConfigFromArgs(t *testing.T) {
	t.Setenv("RACESIM_CMD_TEST_RUNS", "2")

	cfg := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.StringVar(&cfg.Card, "card", "", "card")
	if err := ParseConfigFromArgs(&cfg, fs, []string{"-card", "flag.lua"}); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfg.Card != "flag.lua" || cfg.Runs != 2 {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestParseRejectsNilTargets(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected parse config to reject nil target")
	}
}

func TestRunWithTelemetry(t *testing.T) {
	t.Setenv("RACESIM_OTEL_ENDPOINT", "")

	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceRacesim, nil); err == nil {
		t.Fatal("expected missing run function error")
	}

	want := errors.New("boom")
	err := RunWithTelemetry(context.Background(), ServiceRacesim, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("run error = %v, want %v", err, want)
	}
}
