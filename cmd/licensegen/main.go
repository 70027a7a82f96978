// Command licensegen issues Daftar license keys: it generates the RSA signing
// key pair, signs payloads, registers keys in a license database and mints
// admin credentials.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "licensegen",
		Short:        "Issue and register Daftar license keys",
		SilenceUsage: true,
	}

	root.AddCommand(
		RunKeygenCommand(),
		RunSignCommand(),
		RunRegisterCommand(),
		RunServiceTokenCommand(),
		RunAdminJWTCommand(),
	)
	return root
}
