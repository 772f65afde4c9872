package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/netwatch/internal/security"
)

const passphraseEnv = "NETWATCH_CONFIG_PASSPHRASE"

var openOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Seal and open server config files",
	Long: `netwatch-server reads config files ending in .enc by opening them with
the passphrase in ` + passphraseEnv + `. Use these commands to produce and
inspect such files.`,
}

var configSealCmd = &cobra.Command{
	Use:   "seal <file>",
	Short: "Encrypt a config file to <file>.enc",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plaintext, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		passphrase, err := readPassphrase(cmd)
		if err != nil {
			return err
		}
		path, err := security.WriteSealedFile(args[0], plaintext, passphrase)
		if err != nil {
			return fmt.Errorf("seal config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sealed config written to %s\n", path)
		return nil
	},
}

var configOpenCmd = &cobra.Command{
	Use:   "open <file.enc>",
	Short: "Decrypt a sealed config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !security.IsSealed(args[0]) {
			return fmt.Errorf("%s is not a sealed file (missing %s suffix)", args[0], security.SealedSuffix)
		}
		passphrase, err := readPassphrase(cmd)
		if err != nil {
			return err
		}
		plaintext, err := security.ReadFile(args[0], passphrase)
		if err != nil {
			return err
		}
		if openOutput != "" {
			return os.WriteFile(openOutput, plaintext, 0o600)
		}
		_, err = cmd.OutOrStdout().Write(plaintext)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSealCmd, configOpenCmd)
	configOpenCmd.Flags().StringVar(&openOutput, "out", "", "write plaintext to this file instead of stdout")
}

// readPassphrase reads the passphrase from the environment, or prompts for it.
func readPassphrase(cmd *cobra.Command) ([]byte, error) {
	if v := os.Getenv(passphraseEnv); v != "" {
		return []byte(v), nil
	}
	p, err := promptPassword(cmd.ErrOrStderr(), os.Stdin, "Passphrase: ")
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	if p == "" {
		return nil, fmt.Errorf("passphrase required")
	}
	return []byte(p), nil
}
