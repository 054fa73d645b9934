package main

import (
	"github.com/spf13/cobra"

	"go.zcap.dev/capability/internal/store/memstore"
	"go.zcap.dev/capability/ulid"
)

func revokeCommand() *cobra.Command {
	var capabilityID string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a capability by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			correlation, _ := ulid.New()
			log := newLogger().WithField("correlationId", correlation.String())

			state, err := openState()
			if err != nil {
				return err
			}
			state.stores.Revocations.(*memstore.Revocations).Revoke(capabilityID)
			if err := state.save(); err != nil {
				return err
			}

			log.WithField("capabilityId", capabilityID).Info("capability revoked")
			return nil
		},
	}
	cmd.Flags().StringVar(&capabilityID, "capability", "", "capability ID to revoke")
	_ = cmd.MarkFlagRequired("capability")
	return cmd
}
