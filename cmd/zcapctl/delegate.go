package main

import (
	"time"

	"github.com/spf13/cobra"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/issue"
	"go.zcap.dev/capability/internal/store/memstore"
	"go.zcap.dev/capability/ulid"
)

func delegateCommand() *cobra.Command {
	var parentID, delegatorKeyPath, newInvokerDID, expiresAt, out string
	var actions []string

	cmd := &cobra.Command{
		Use:   "delegate",
		Short: "Delegate an attenuated child capability from a parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			correlation, _ := ulid.New()
			log := newLogger().WithField("correlationId", correlation.String())

			delegatorKey, err := readKeyPair(delegatorKeyPath)
			if err != nil {
				return err
			}
			defer delegatorKey.Destroy()

			var expires *time.Time
			if expiresAt != "" {
				t, err := time.Parse(time.RFC3339, expiresAt)
				if err != nil {
					return err
				}
				expires = &t
			}

			var actionNames []string
			if len(actions) > 0 {
				actionNames = actions
			}

			state, err := openState()
			if err != nil {
				return err
			}

			child, err := issue.DelegateCapability(
				parentID, delegatorKey, newInvokerDID, actionNames, expires, nil,
				state.stores, capability.SystemClock{},
			)
			if err != nil {
				return err
			}

			state.stores.Capabilities.(*memstore.Capabilities).Put(child)
			if err := state.save(); err != nil {
				return err
			}

			log.WithField("capabilityId", child.ID).
				WithField("parentId", parentID).
				Info("capability delegated")
			return writeJSON(child, out)
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent capability ID")
	cmd.Flags().StringVar(&delegatorKeyPath, "delegator-key", "", "path to the delegator's (parent invoker's) PEM-encoded private key")
	cmd.Flags().StringVar(&newInvokerDID, "new-invoker-did", "", "DID of the new invoker")
	cmd.Flags().StringSliceVar(&actions, "action", nil, "attenuated action name (repeatable); omit to inherit the parent's full set")
	cmd.Flags().StringVar(&expiresAt, "expires", "", "RFC3339 expiry instant, must not exceed the parent's")
	cmd.Flags().StringVar(&out, "out", "", "file to write the delegated capability document to (default: stdout)")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("delegator-key")
	_ = cmd.MarkFlagRequired("new-invoker-did")
	return cmd
}
