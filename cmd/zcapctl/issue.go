package main

import (
	"time"

	"github.com/spf13/cobra"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/issue"
	"go.zcap.dev/capability/internal/store/memstore"
	"go.zcap.dev/capability/ulid"
)

func issueCommand() *cobra.Command {
	var controllerKeyPath, controllerDID, invokerDID, targetID, targetType, expiresAt, out string
	var actions []string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a new, self-rooted capability",
		RunE: func(cmd *cobra.Command, args []string) error {
			correlation, _ := ulid.New()
			log := newLogger().WithField("correlationId", correlation.String())

			controllerKey, err := readKeyPair(controllerKeyPath)
			if err != nil {
				return err
			}
			defer controllerKey.Destroy()

			var expires *time.Time
			if expiresAt != "" {
				t, err := time.Parse(time.RFC3339, expiresAt)
				if err != nil {
					return err
				}
				expires = &t
			}

			acts := make([]capability.Action, len(actions))
			for i, a := range actions {
				acts[i] = capability.Action{Name: a}
			}

			state, err := openState()
			if err != nil {
				return err
			}

			cap, err := issue.CreateCapability(
				controllerDID, invokerDID, acts,
				capability.Target{ID: targetID, Type: targetType},
				controllerKey, expires, nil, capability.SystemClock{},
			)
			if err != nil {
				return err
			}

			state.stores.Capabilities.(*memstore.Capabilities).Put(cap)
			if err := state.save(); err != nil {
				return err
			}

			log.WithField("capabilityId", cap.ID).Info("capability issued")
			return writeJSON(cap, out)
		},
	}
	cmd.Flags().StringVar(&controllerKeyPath, "controller-key", "", "path to the controller's PEM-encoded private key")
	cmd.Flags().StringVar(&controllerDID, "controller-did", "", "controller DID")
	cmd.Flags().StringVar(&invokerDID, "invoker-did", "", "invoker DID")
	cmd.Flags().StringSliceVar(&actions, "action", nil, "authorized action name (repeatable)")
	cmd.Flags().StringVar(&targetID, "target", "", "target resource identifier")
	cmd.Flags().StringVar(&targetType, "target-type", "resource", "target resource type")
	cmd.Flags().StringVar(&expiresAt, "expires", "", "RFC3339 expiry instant (optional)")
	cmd.Flags().StringVar(&out, "out", "", "file to write the issued capability document to (default: stdout)")
	_ = cmd.MarkFlagRequired("controller-key")
	_ = cmd.MarkFlagRequired("controller-did")
	_ = cmd.MarkFlagRequired("invoker-did")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
