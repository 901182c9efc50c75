package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "signctl",
		Short: "Reproduce upload signatures offline",
		Long: `signctl runs the same validation and signing as the upload signer
server against a policy document or REST string to sign read from a file
or stdin. Use it to debug signature mismatches reported by the storage service.

The client secret is read from the environment variable named by --secret-env
so it never appears in shell history.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("secret-env", "AWS_CLIENT_SECRET_KEY", "environment variable holding the client secret")

	rootCmd.AddCommand(NewSignPolicyCommand())
	rootCmd.AddCommand(NewSignRestCommand())
	rootCmd.AddCommand(NewDeriveKeyCommand())

	return rootCmd
}
