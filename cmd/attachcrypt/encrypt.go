package main

import (
	"encoding/base64"
	"fmt"

	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
	"github.com/sealtalk/attachcrypt/internal/localstore"
	"github.com/spf13/cobra"
)

func newEncryptCmd() *cobra.Command {
	var inputPath, storeRoot, keyBase64 string

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file into a fresh AttachmentCryptoV2 frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--in is required")
			}

			keys, err := resolveOrGenerateKey(keyBase64)
			if err != nil {
				return fmt.Errorf("resolving key: %w", err)
			}

			store, err := localstore.NewStore(storeRoot)
			if err != nil {
				return err
			}
			relative, err := store.AllocateRelativePath()
			if err != nil {
				return err
			}

			result, err := attachcrypto.EncryptAttachmentV2ToDisk(
				attachcrypto.FileSource(inputPath),
				keys,
				attachcrypto.EncryptOptions{},
				relative,
				store.Resolve,
			)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"path":           result.Path,
				"digestBase64":   base64.StdEncoding.EncodeToString(result.Digest),
				"ivBase64":       base64.StdEncoding.EncodeToString(result.IV),
				"plaintextHash":  result.PlaintextHash,
				"ciphertextSize": result.CiphertextSize,
				"keyBase64":      base64.StdEncoding.EncodeToString(keys),
			})
		},
	}

	cmd.Flags().StringVar(&inputPath, "in", "", "absolute path of the plaintext file")
	cmd.Flags().StringVar(&storeRoot, "store", "./attachcrypt-store", "root directory for encrypted output")
	cmd.Flags().StringVar(&keyBase64, "key", "", "base64 combined key; generated if omitted")
	return cmd
}
