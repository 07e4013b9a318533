package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/hrmp/format"
)

var errInvalidArgCount = errors.New("expected at least one argument: file path")

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Identify a file's kind and print its metadata without playing it",
		ArgsUsage: "<file> [<file>...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "experimental",
				Usage: "accept sample rates of 705600 Hz and 768000 Hz",
			},
		},
		Action: runProbe,
	}
}

func runProbe(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	prober := &format.Prober{Experimental: cmd.Bool("experimental")}

	for _, path := range cmd.Args().Slice() {
		fm, err := prober.Probe(path)
		if err != nil {
			fmt.Printf("%s: error: %v\n", path, err) //nolint:forbidigo

			continue
		}

		fmt.Printf("%s: %s %dHz %d-bit %dch, %.2fs\n", //nolint:forbidigo
			path, fm.Kind, fm.SampleRate, fm.BitDepth, fm.Channels, fm.Duration)

		if fm.Tags.Title != "" || fm.Tags.Artist != "" {
			fmt.Printf("  %s — %s (%s)\n", fm.Tags.Title, fm.Tags.Artist, fm.Tags.Album) //nolint:forbidigo
		}
	}

	return nil
}
