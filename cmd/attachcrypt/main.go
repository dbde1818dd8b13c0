// Command attachcrypt exercises the AttachmentCryptoV2 engine end to
// end: encrypt, decrypt, rekey, and the small key-management helpers
// around it. It is a demonstration CLI over internal/attachcrypto,
// built as a cobra subcommand tree since its five subcommands would
// be unwieldy behind a single hand-dispatched flag.FlagSet switch.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "attachcrypt",
		Short: "Encrypt, decrypt, and rekey AttachmentCryptoV2 frames",
	}
	root.AddCommand(
		newEncryptCmd(),
		newDecryptCmd(),
		newReencryptCmd(),
		newGenKeyCmd(),
		newCiphertextLenCmd(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "attachcrypt:", err)
		os.Exit(1)
	}
}
