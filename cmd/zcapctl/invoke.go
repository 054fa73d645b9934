package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.zcap.dev/capability/capability"
	"go.zcap.dev/capability/capability/invoke"
	"go.zcap.dev/capability/ulid"
)

func invokeCommand() *cobra.Command {
	var capabilityID, actionName, invokerKeyPath, out string
	var params []string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Exercise a capability for an action, producing a signed invocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			correlation, _ := ulid.New()
			log := newLogger().WithField("correlationId", correlation.String())

			invokerKey, err := readKeyPair(invokerKeyPath)
			if err != nil {
				return err
			}
			defer invokerKey.Destroy()

			parameters, err := parseParams(params)
			if err != nil {
				return err
			}

			state, err := openState()
			if err != nil {
				return err
			}
			cap, ok := state.stores.Capabilities.Get(capabilityID)
			if !ok {
				return fmt.Errorf("capability %q not found in state", capabilityID)
			}

			inv, err := invoke.Capability(cap, actionName, invokerKey, state.stores, parameters, capability.SystemClock{})
			if err != nil {
				return err
			}

			log.WithField("invocationId", inv.ID).
				WithField("capabilityId", capabilityID).
				WithField("action", actionName).
				Info("capability invoked")
			return writeJSON(inv, out)
		},
	}
	cmd.Flags().StringVar(&capabilityID, "capability", "", "capability ID to invoke")
	cmd.Flags().StringVar(&actionName, "action", "", "action name to invoke")
	cmd.Flags().StringVar(&invokerKeyPath, "invoker-key", "", "path to the invoker's PEM-encoded private key")
	cmd.Flags().StringSliceVar(&params, "param", nil, "action parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "file to write the invocation document to (default: stdout)")
	_ = cmd.MarkFlagRequired("capability")
	_ = cmd.MarkFlagRequired("action")
	_ = cmd.MarkFlagRequired("invoker-key")
	return cmd
}

// parseParams turns a list of "key=value" strings into a parameter map.
func parseParams(raw []string) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]interface{}, len(raw))
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed parameter %q, expected key=value", kv)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}
