package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/upload-signer/pkg/uploadsigner"
)

func clientSecret(cmd *cobra.Command) (string, error) {
	name, _ := cmd.Flags().GetString("secret-env")
	secret := os.Getenv(name)
	if secret == "" {
		return "", fmt.Errorf("environment variable %s is empty", name)
	}
	return secret, nil
}

// readInput reads the named file, or stdin for "-" or no argument
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func printResult(cmd *cobra.Command, result *uploadsigner.SigningResult) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if result.Invalid {
		return errors.New("request rejected by validation")
	}
	return nil
}

func versionFlag(cmd *cobra.Command) uploadsigner.SigningVersion {
	if v4, _ := cmd.Flags().GetBool("v4"); v4 {
		return uploadsigner.SigningV4
	}
	return uploadsigner.SigningV2
}

func NewSignPolicyCommand() *cobra.Command {
	var bucket string
	var maxSize int64
	var v4 bool

	cmd := &cobra.Command{
		Use:   "sign-policy [file]",
		Short: "Validate and sign a POST policy document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := clientSecret(cmd)
			if err != nil {
				return err
			}
			policy, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("failed to read policy: %w", err)
			}

			opts := []uploadsigner.SignerOption{
				uploadsigner.WithClientSecret(secret),
				uploadsigner.WithExpectedBucket(bucket),
			}
			if maxSize > 0 {
				opts = append(opts, uploadsigner.WithPolicyMaxSize(maxSize))
			}

			result, err := uploadsigner.NewSigner(opts...).SignPolicy(policy, versionFlag(cmd))
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "expected bucket name")
	cmd.Flags().Int64Var(&maxSize, "max-size", 0, "expected content-length-range maximum (0 disables the check)")
	cmd.Flags().BoolVar(&v4, "v4", false, "use signature version 4")
	cmd.MarkFlagRequired("bucket")

	return cmd
}

func NewSignRestCommand() *cobra.Command {
	var bucket string
	var host string
	var v4 bool

	cmd := &cobra.Command{
		Use:   "sign-rest [file]",
		Short: "Validate and sign a REST string to sign",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := clientSecret(cmd)
			if err != nil {
				return err
			}
			headers, err := readInput(cmd, args)
			if err != nil {
				return fmt.Errorf("failed to read string to sign: %w", err)
			}

			signer := uploadsigner.NewSigner(
				uploadsigner.WithClientSecret(secret),
				uploadsigner.WithExpectedBucket(bucket),
				uploadsigner.WithExpectedHost(host),
			)
			result, err := signer.SignRest(string(headers), versionFlag(cmd))
			if err != nil {
				return err
			}
			return printResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "expected bucket name (v2)")
	cmd.Flags().StringVar(&host, "host", "", "expected host name (v4)")
	cmd.Flags().BoolVar(&v4, "v4", false, "use signature version 4")

	return cmd
}

func NewDeriveKeyCommand() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "derive-key",
		Short: "Print the hex SigV4 signing key for a credential scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := clientSecret(cmd)
			if err != nil {
				return err
			}
			parsed, err := uploadsigner.ParseCredentialScope(scope)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(parsed.SigningKey([]byte(secret))))
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "credential scope, e.g. 20240101/us-east-1/s3/aws4_request")
	cmd.MarkFlagRequired("scope")

	return cmd
}
