package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/good-yellow-bee/netwatch/internal/api/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for the users config",
	Long: `Prompt for a password, check it against the password policy, and print
a bcrypt hash for the password_hash field of a configured user.

When stdin is not a terminal the password is read from the first line.

Example:
  netwatchctl hash-password
  echo 'Correct-Horse-9' | netwatchctl hash-password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword(cmd.ErrOrStderr(), os.Stdin, "Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if term.IsTerminal(int(os.Stdin.Fd())) {
			confirm, err := promptPassword(cmd.ErrOrStderr(), os.Stdin, "Confirm password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if confirm != password {
				return fmt.Errorf("passwords do not match")
			}
		}

		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

// hashPassword enforces the password policy and returns a bcrypt hash.
func hashPassword(password string) (string, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return "", err
	}
	return auth.HashPassword(password)
}

// promptPassword reads a password without echo from a terminal, or one
// line from in otherwise.
func promptPassword(prompt io.Writer, in *os.File, label string) (string, error) {
	fmt.Fprint(prompt, label)

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(passwordBytes), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
