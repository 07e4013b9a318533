package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/format"
	"github.com/mycophonic/hrmp/internal/log"
	"github.com/mycophonic/hrmp/keyboard"
	"github.com/mycophonic/hrmp/playback"
	"github.com/mycophonic/hrmp/queue"
	sinkoto "github.com/mycophonic/hrmp/sink/oto"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Queue files and play them in order",
		ArgsUsage: "<file> [<file>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "device", Usage: "preferred output device name"},
			&cli.BoolFlag{Name: "dop", Usage: "force DoP encapsulation for DSD content"},
			&cli.BoolFlag{Name: "experimental", Usage: "accept 705600/768000 Hz sample rates"},
			&cli.BoolFlag{Name: "developer", Usage: "enable debug-level diagnostics"},
			&cli.StringFlag{Name: "output", Usage: "progress line template", Value: playback.DefaultTemplate},
			&cli.IntFlag{Name: "volume", Usage: "initial volume percent (0-100)", Value: 80},
		},
		Action: runPlay,
	}
}

func runPlay(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	if cmd.Bool("developer") {
		log.SetDefault(log.New(os.Stderr, true))
	}

	prober := &format.Prober{Experimental: cmd.Bool("experimental")}

	var entries []*hrmp.FileMetadata

	for _, path := range cmd.Args().Slice() {
		fm, err := prober.Probe(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: skipped: %v\n", path, err) //nolint:errcheck

			continue
		}

		entries = append(entries, fm)
	}

	if len(entries) == 0 {
		return errors.New("play: no playable files")
	}

	q := queue.New(entries)

	kb, err := keyboard.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "play: keyboard control disabled: %v\n", err) //nolint:errcheck
	} else {
		defer kb.Close()
	}

	dev := &playback.Device{Backend: &sinkoto.Backend{}, Name: cmd.String("device")}
	opts := playback.Options{
		DoP:       cmd.Bool("dop"),
		Template:  cmd.String("output"),
		VolumePct: cmd.Int("volume"),
	}
	controller := playback.NewController(dev, kb, opts)

	for fm := q.Current(); fm != nil; {
		number := q.Pos() + 1

		adv, err := controller.Play(fm, number, q.Len(), os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fm.Path, err) //nolint:errcheck
		}

		switch adv {
		case playback.AdvanceQuit:
			return nil
		case playback.AdvancePrevious:
			q.Retreat()
		default:
			if !q.Advance() {
				return nil
			}
		}

		fm = q.Current()
	}

	return nil
}
