package main

import (
	"encoding/base64"
	"fmt"

	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
	"github.com/sealtalk/attachcrypt/internal/localstore"
	"github.com/spf13/cobra"
)

func newDecryptCmd() *cobra.Command {
	var ciphertextPath, storeRoot, keyBase64, digestBase64, mode, idForLogging, backupKeyBase64 string
	var size int64
	var strictPadding bool

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an AttachmentCryptoV2 frame and verify its integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ciphertextPath == "" {
				return fmt.Errorf("--in is required")
			}
			keys, err := base64.StdEncoding.DecodeString(keyBase64)
			if err != nil {
				return fmt.Errorf("decoding --key: %w", err)
			}
			aesKey, macKey, err := attachcrypto.SplitKeys(keys)
			if err != nil {
				return err
			}

			integrityMode, err := parseIntegrityMode(mode, digestBase64)
			if err != nil {
				return err
			}

			outer, err := resolveOuterKeys(backupKeyBase64)
			if err != nil {
				return err
			}

			store, err := localstore.NewStore(storeRoot)
			if err != nil {
				return err
			}
			relative, err := store.AllocateRelativePath()
			if err != nil {
				return err
			}

			result, err := attachcrypto.DecryptAttachmentV2(
				attachcrypto.DecryptOptions{
					CiphertextPath: ciphertextPath,
					IDForLogging:   idForLogging,
					Size:           size,
					AESKey:         aesKey,
					MACKey:         macKey,
					Mode:           integrityMode,
					Outer:          outer,
					StrictPadding:  strictPadding,
				},
				relative,
				store.Resolve,
			)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"path":          result.Path,
				"ivBase64":      base64.StdEncoding.EncodeToString(result.IV),
				"plaintextHash": result.PlaintextHash,
			})
		},
	}

	cmd.Flags().StringVar(&ciphertextPath, "in", "", "absolute path of the ciphertext frame")
	cmd.Flags().StringVar(&storeRoot, "store", "./attachcrypt-store", "root directory for decrypted output")
	cmd.Flags().StringVar(&keyBase64, "key", "", "base64 combined key")
	cmd.Flags().StringVar(&digestBase64, "digest", "", "base64 expected digest, required when --mode=standard")
	cmd.Flags().StringVar(&mode, "mode", "standard", "integrity mode: standard, local, or backup-thumbnail")
	cmd.Flags().StringVar(&idForLogging, "id", "", "attachment id used in log lines")
	cmd.Flags().Int64Var(&size, "plaintext-size", 0, "declared unpadded plaintext length")
	cmd.Flags().BoolVar(&strictPadding, "strict-padding", false, "verify the discarded padding tail is all zero")
	cmd.Flags().StringVar(&backupKeyBase64, "backup-key", "", "base64 64-byte backup key, enables the outer encryption layer")
	return cmd
}

func parseIntegrityMode(mode, digestBase64 string) (attachcrypto.IntegrityMode, error) {
	switch mode {
	case "", "standard":
		digest, err := base64.StdEncoding.DecodeString(digestBase64)
		if err != nil {
			return attachcrypto.IntegrityMode{}, fmt.Errorf("decoding --digest: %w", err)
		}
		return attachcrypto.IntegrityMode{Kind: attachcrypto.IntegrityStandard, TheirDigest: digest}, nil
	case "local":
		return attachcrypto.IntegrityMode{Kind: attachcrypto.IntegrityLocal}, nil
	case "backup-thumbnail":
		return attachcrypto.IntegrityMode{Kind: attachcrypto.IntegrityBackupThumbnail}, nil
	default:
		return attachcrypto.IntegrityMode{}, fmt.Errorf("unknown --mode %q", mode)
	}
}
