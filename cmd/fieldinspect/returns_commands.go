package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldinspect/internal/config"
	"fieldinspect/internal/inspection"
	"fieldinspect/internal/store"
)

func newReturnsCommand(ctx *commandContext) *cobra.Command {
	returnsCmd := &cobra.Command{
		Use:   "returns",
		Short: "Manage planting return snapshots",
	}
	returnsCmd.AddCommand(newReturnsAddCommand(ctx))
	return returnsCmd
}

func newReturnsAddCommand(ctx *commandContext) *cobra.Command {
	var (
		cropID      int64
		inspectorID int64
		dateSown    string
	)

	cmd := &cobra.Command{
		Use:   "add <return-id>",
		Short: "Record or update the snapshot of a planting return",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			returnID, err := parseReturnID(args[0])
			if err != nil {
				return err
			}
			if cropID <= 0 {
				return fmt.Errorf("--crop must be a positive crop id")
			}
			if dateSown != "" {
				if _, ok := inspection.ParseDate(dateSown); !ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: sowing date %q is not YYYY-MM-DD; due dates will be empty\n", dateSown)
				}
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				rec := store.ReturnRecord{
					ID:          returnID,
					CropID:      cropID,
					InspectorID: inspectorID,
					DateSown:    dateSown,
				}
				if err := st.UpsertReturn(cmdContext(cmd), rec); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Return #%d recorded for crop %d\n", returnID, cropID)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&cropID, "crop", 0, "Crop id")
	cmd.Flags().Int64Var(&inspectorID, "inspector", 0, "Assigned inspector id (0 for none)")
	cmd.Flags().StringVar(&dateSown, "sown", "", "Planting date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("crop")
	return cmd
}
