// Command racesim runs race cards and prints the results.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	racesimcmd "github.com/louisbranch/racesim/internal/cmd/racesim"
	"github.com/louisbranch/racesim/internal/platform/config"
	apperrors "github.com/louisbranch/racesim/internal/platform/errors"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		config.Exitf("racesim: %v", err)
	}
	cfg, err := racesimcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitCodef(2, "racesim: parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := racesimcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		config.ExitCodef(apperrors.GetCode(err).ExitCode(), "racesim: %v", err)
	}
}
