package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.zcap.dev/capability/capability"
	ed25519 "go.zcap.dev/capability/crypto/ed25519"
	"go.zcap.dev/capability/internal/store/memstore"
)

// stateHandle bundles the stores loaded from the state file for the
// duration of a single command invocation, along with the means to
// persist any changes back before the process exits.
type stateHandle struct {
	path   string
	stores capability.Stores
}

func openState() (*stateHandle, error) {
	path := cfg.Internals().GetString("state")
	stores, err := memstore.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading state from %q: %w", path, err)
	}
	return &stateHandle{path: path, stores: stores}, nil
}

func (s *stateHandle) save() error {
	return memstore.Snapshot(s.stores).Save(s.path)
}

// writeKeyPair PEM-encodes kp and writes it to path, or to stdout when
// path is empty.
func writeKeyPair(kp *ed25519.KeyPair, path string) error {
	data, err := kp.MarshalBinary()
	if err != nil {
		return err
	}
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// readKeyPair loads a PEM-encoded key pair from path.
func readKeyPair(path string) (*ed25519.KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ed25519.Unmarshal(data)
}

// writeJSON pretty-prints v to path, or to stdout when path is empty.
func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// readCapability loads a capability document from path.
func readCapability(path string) (*capability.Capability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cap capability.Capability
	if err := json.Unmarshal(data, &cap); err != nil {
		return nil, err
	}
	return &cap, nil
}

// readInvocation loads an invocation document from path.
func readInvocation(path string) (*capability.Invocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var inv capability.Invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}
