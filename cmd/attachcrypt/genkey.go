package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/sealtalk/attachcrypt/internal/attachcrypto"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/term"
)

const (
	genKeySaltLength = 16
	genKeyTime       = 1
	genKeyMemoryKiB  = 64 * 1024
	genKeyThreads    = 4
)

func newGenKeyCmd() *cobra.Command {
	var protect bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "genkey",
		Short: "Generate a fresh 64-byte AttachmentCryptoV2 key, optionally sealed with a passphrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := attachcrypto.GenerateKeys()
			if err != nil {
				return err
			}

			if !protect {
				return printJSON(map[string]any{
					"keyBase64": base64.StdEncoding.EncodeToString(keys),
				})
			}
			if outPath == "" {
				return fmt.Errorf("--out is required with --protect")
			}

			passphrase, err := readPasswordPromptConfirm()
			if err != nil {
				return err
			}

			sealed, err := sealLocalKey(keys, passphrase)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, sealed, 0o600); err != nil {
				return fmt.Errorf("writing protected key file: %w", err)
			}

			return printJSON(map[string]any{
				"path": outPath,
			})
		},
	}

	cmd.Flags().BoolVar(&protect, "protect", false, "seal the generated key at rest with a passphrase")
	cmd.Flags().StringVar(&outPath, "out", "", "path to write the passphrase-sealed key to, required with --protect")
	return cmd
}

// readPasswordPromptConfirm prompts twice on the controlling terminal
// and requires the two entries to match.
func readPasswordPromptConfirm() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase confirmation: %w", err)
	}

	if string(first) != string(second) {
		return nil, fmt.Errorf("passphrases do not match")
	}
	return first, nil
}

// sealLocalKey derives a key from passphrase with argon2id and seals
// the combined AttachmentCryptoV2 key with chacha20poly1305 so it can
// be written to disk without exposing the raw key bytes.
func sealLocalKey(keys, passphrase []byte) ([]byte, error) {
	salt := make([]byte, genKeySaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	derived := argon2.IDKey(passphrase, salt, genKeyTime, genKeyMemoryKiB, genKeyThreads, chacha20poly1305.KeySize)

	aead, err := chacha20poly1305.New(derived)
	if err != nil {
		return nil, fmt.Errorf("constructing AEAD: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, keys, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}
