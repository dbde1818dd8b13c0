package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
)

func resolveOrGenerateKey(keyBase64 string) ([]byte, error) {
	if keyBase64 == "" {
		return attachcrypto.GenerateKeys()
	}
	return base64.StdEncoding.DecodeString(keyBase64)
}

// resolveOuterKeys builds the optional outer-layer keys for a backup
// thumbnail fetch (spec.md §3) from a single base64 backup key, or
// returns nil when backupKeyBase64 is empty.
func resolveOuterKeys(backupKeyBase64 string) (*attachcrypto.OuterKeys, error) {
	if backupKeyBase64 == "" {
		return nil, nil
	}
	backupKey, err := base64.StdEncoding.DecodeString(backupKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding --backup-key: %w", err)
	}
	aesKey, macKey, err := attachcrypto.DeriveOuterKeys(backupKey, "attachment-backup")
	if err != nil {
		return nil, err
	}
	return &attachcrypto.OuterKeys{AESKey: aesKey, MACKey: macKey}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
