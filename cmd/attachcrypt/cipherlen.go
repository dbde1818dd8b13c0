package main

import (
	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
	"github.com/spf13/cobra"
)

func newCiphertextLenCmd() *cobra.Command {
	var plaintextLen int64

	cmd := &cobra.Command{
		Use:   "ciphertext-len",
		Short: "Compute the on-disk frame size for a plaintext of a given length",
		RunE: func(cmd *cobra.Command, args []string) error {
			size := attachcrypto.GetAttachmentCiphertextLengthForPlaintext(plaintextLen, nil)
			return printJSON(map[string]any{
				"plaintextLen":  plaintextLen,
				"ciphertextLen": size,
			})
		},
	}

	cmd.Flags().Int64Var(&plaintextLen, "plaintext-len", 0, "raw unpadded plaintext length")
	return cmd
}
