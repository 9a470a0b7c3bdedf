// Package wallet loads the validator's hotkey from a bittensor-style wallet directory.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is where wallets live unless configured otherwise
const DefaultPath = "~/.bittensor/wallets"

// Sentinel errors for wallet loading
var (
	ErrKeyfileUnreadable = errors.New("hotkey keyfile unreadable")
	ErrKeyfileMalformed  = errors.New("hotkey keyfile malformed")
	ErrMissingAddress    = errors.New("hotkey keyfile has no ss58 address")
)

// Hotkey is the signing identity of the validator. The controller treats it
// as opaque and only passes it through to weight submission.
type Hotkey struct {
	Wallet      string
	Name        string
	SS58Address string
	PublicKey   string
}

// keyfile is the unencrypted JSON layout written by the bittensor wallet tooling
type keyfile struct {
	AccountID   string `json:"accountId"`
	PublicKey   string `json:"publicKey"`
	SS58Address string `json:"ss58Address"`
}

// Load reads <path>/<wallet>/hotkeys/<hotkey>
func Load(path, walletName, hotkeyName string) (Hotkey, error) {
	dir, err := expandHome(path)
	if err != nil {
		return Hotkey{}, fmt.Errorf("%w: %w", ErrKeyfileUnreadable, err)
	}

	file := filepath.Join(dir, walletName, "hotkeys", hotkeyName)
	data, err := os.ReadFile(file)
	if err != nil {
		return Hotkey{}, fmt.Errorf("%w: %w", ErrKeyfileUnreadable, err)
	}

	var kf keyfile
	if err := json.Unmarshal(data, &kf); err != nil {
		return Hotkey{}, fmt.Errorf("%w: %s: %w", ErrKeyfileMalformed, file, err)
	}
	if kf.SS58Address == "" {
		return Hotkey{}, fmt.Errorf("%w: %s", ErrMissingAddress, file)
	}

	publicKey := kf.PublicKey
	if publicKey == "" {
		publicKey = kf.AccountID
	}

	return Hotkey{
		Wallet:      walletName,
		Name:        hotkeyName,
		SS58Address: kf.SS58Address,
		PublicKey:   publicKey,
	}, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
