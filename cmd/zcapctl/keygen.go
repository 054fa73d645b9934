package main

import (
	"github.com/spf13/cobra"

	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/did"
	"go.zcap.dev/capability/ulid"
)

func keygenCommand() *cobra.Command {
	var out, registerDID string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 key pair and print its did:key identifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			correlation, _ := ulid.New()
			log := newLogger().WithField("correlationId", correlation.String())

			kp, err := ed25519.New()
			if err != nil {
				return err
			}
			defer kp.Destroy()

			pub := kp.PublicKey()
			id, err := did.NewKeyDID(pub[:])
			if err != nil {
				return err
			}

			if err := writeKeyPair(kp, out); err != nil {
				return err
			}

			if registerDID != "" {
				id = registerDID
			}
			state, err := openState()
			if err != nil {
				return err
			}
			if registerer, ok := state.stores.DidKeys.(interface {
				Register(string, []byte)
			}); ok {
				registerer.Register(id, pub[:])
			}
			if err := state.save(); err != nil {
				return err
			}

			log.WithField("did", id).Info("key pair generated")
			cmd.Println(id)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "file to write the PEM-encoded private key to (default: stdout)")
	cmd.Flags().StringVar(&registerDID, "did", "", "register the key under this DID instead of its derived did:key identifier")
	return cmd
}
