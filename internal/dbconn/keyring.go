package dbconn

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "gridworkspaces"

// SavePassword stores the password of cfg in the OS credential manager.
func SavePassword(cfg ConnectionConfig) error {
	if cfg.Password == "" {
		return fmt.Errorf("no password to store for %s", cfg.ProfileName())
	}
	return keyring.Set(keyringService, cfg.ProfileName(), cfg.Password)
}

// DeletePassword removes the stored password of cfg, if any.
func DeletePassword(cfg ConnectionConfig) error {
	err := keyring.Delete(keyringService, cfg.ProfileName())
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// resolvePassword fills cfg.Password from the credential manager when the
// profile asks for it. An explicit password always wins.
func resolvePassword(cfg ConnectionConfig) (ConnectionConfig, error) {
	if !cfg.PasswordFromKeyring || cfg.Password != "" {
		return cfg, nil
	}
	password, err := keyring.Get(keyringService, cfg.ProfileName())
	if errors.Is(err, keyring.ErrNotFound) {
		return cfg, fmt.Errorf("no password stored for %s; run migrate --save-password first", cfg.ProfileName())
	}
	if err != nil {
		return cfg, fmt.Errorf("load password from keyring: %w", err)
	}
	cfg.Password = password
	return cfg, nil
}
