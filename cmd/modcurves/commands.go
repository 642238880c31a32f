package main

import (
	"modcurves/internal/ingest"

	"github.com/spf13/cobra"
)

func showCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show LABEL",
		Short: "Show the invariants of a curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.svc.Curve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.write(view)
		},
	}
}

func coversCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "covers LABEL",
		Short: "List covers, covered-by curves, twists and friends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := a.svc.Relations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rel.RationalPoints, rel.NumberFieldPoints = nil, nil
			return a.write(rel)
		},
	}
}

func pointsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "points LABEL",
		Short: "List rational and low-degree points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := a.svc.Points(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.write(ps)
		},
	}
}

func latticeCommand(a *app) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "lattice LABEL",
		Short: "Walk the curves above LABEL through parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			anc, err := a.svc.Ancestors(cmd.Context(), args[0], depth)
			if err != nil {
				return err
			}
			return a.write(anc)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 3, "Maximum number of parent steps")
	return cmd
}

func importCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import KEY",
		Short: "Load a JSON or YAML bundle from the blob store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := a.blobs(cmd.Context())
			if err != nil {
				return err
			}
			sum, err := ingest.NewLoader(bs, a.store, a.log).Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.svc.Invalidate()
			return a.write(sum)
		},
	}
}

func exportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export KEY",
		Short: "Write a snapshot of the record store to the blob store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := a.blobs(cmd.Context())
			if err != nil {
				return err
			}
			sum, err := ingest.NewLoader(bs, a.store, a.log).Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.write(sum)
		},
	}
}
