package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/invoke"
	"go.zcap.dev/capability/capability/verify"
	"go.zcap.dev/capability/ulid"
)

func verifyCommand() *cobra.Command {
	var capabilityID, capabilityFile, invocationFile string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a capability (by state ID or file) or a standalone invocation document",
		RunE: func(cmd *cobra.Command, args []string) error {
			correlation, _ := ulid.New()
			log := newLogger().WithField("correlationId", correlation.String())

			state, err := openState()
			if err != nil {
				return err
			}

			switch {
			case invocationFile != "":
				inv, err := readInvocation(invocationFile)
				if err != nil {
					return err
				}
				if err := invoke.Invocation(inv, state.stores, 0, capability.SystemClock{}); err != nil {
					log.WithField("invocationId", inv.ID).WithField("error", err).Warning("invocation verification failed")
					return err
				}
				if err := state.save(); err != nil {
					return err
				}
				log.WithField("invocationId", inv.ID).Info("invocation verified")
				cmd.Println("OK")
				return nil

			case capabilityFile != "":
				cap, err := readCapability(capabilityFile)
				if err != nil {
					return err
				}
				if err := verify.Capability(cap, state.stores, capability.SystemClock{}); err != nil {
					log.WithField("capabilityId", cap.ID).WithField("error", err).Warning("capability verification failed")
					return err
				}
				log.WithField("capabilityId", cap.ID).Info("capability verified")
				cmd.Println("OK")
				return nil

			case capabilityID != "":
				cap, ok := state.stores.Capabilities.Get(capabilityID)
				if !ok {
					return fmt.Errorf("capability %q not found in state", capabilityID)
				}
				if err := verify.Capability(cap, state.stores, capability.SystemClock{}); err != nil {
					log.WithField("capabilityId", cap.ID).WithField("error", err).Warning("capability verification failed")
					return err
				}
				log.WithField("capabilityId", cap.ID).Info("capability verified")
				cmd.Println("OK")
				return nil

			default:
				return fmt.Errorf("one of --capability, --capability-file or --invocation-file is required")
			}
		},
	}
	cmd.Flags().StringVar(&capabilityID, "capability", "", "capability ID, looked up in the state file")
	cmd.Flags().StringVar(&capabilityFile, "capability-file", "", "path to a standalone capability document")
	cmd.Flags().StringVar(&invocationFile, "invocation-file", "", "path to a standalone invocation document")
	return cmd
}
