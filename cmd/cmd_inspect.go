package cmd

import (
	"context"
	"fmt"

	"github.com/kr/pretty"
	"github.com/rubenv/batidiff/batidiff"
)

type CmdInspect struct {
	global *GlobalOptions
}

func init() {
	_, err := parser.AddCommand("inspect",
		"Inspect a building",
		"Show a building of a snapshot with its derived geometry and ring checks",
		&CmdInspect{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdInspect) Usage() string {
	return "file id"
}

func (cmd CmdInspect) Execute(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("Options missing, Usage: %s", cmd.Usage())
	}

	_, _, err := cmd.global.Setup()
	if err != nil {
		return err
	}

	s, _, err := cmd.global.ReadSnapshot(context.Background(), args[0])
	if err != nil {
		return err
	}

	b := s.Get(args[1])
	if b == nil {
		return fmt.Errorf("Unknown building: %s", args[1])
	}

	fmt.Printf("%# v\n", pretty.Formatter(b))
	if b.IsOuter() {
		fmt.Printf("Centroid inside: %v\n", batidiff.CentroidInside(b))
	}
	err = batidiff.ValidateRing(b.Nodes)
	if err != nil {
		fmt.Printf("Invalid ring: %s\n", err)
	}
	return nil
}
