package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/netwatch/internal/api/auth"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

var (
	tokenUsername string
	tokenRole     string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API access token",
	Long: `Sign an access token with the server's JWT secret, read from
NETWATCH_JWT_SECRET. The username does not need to exist in the config;
the role alone decides what the token may do.

Example:
  NETWATCH_JWT_SECRET=... netwatchctl token --username nightly-report --role user --ttl 10m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := mintToken(os.Getenv("NETWATCH_JWT_SECRET"), tokenUsername, tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUsername, "username", "u", "", "username placed in the token (required)")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", string(models.RoleUser), "role: admin or user")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 15*time.Minute, "token lifetime")
	tokenCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(tokenCmd)
}

func mintToken(secret, username, role string, ttl time.Duration) (string, error) {
	if len(secret) < 32 {
		return "", fmt.Errorf("NETWATCH_JWT_SECRET must be set to the server's secret (at least 32 bytes)")
	}
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	r := models.Role(role)
	if r != models.RoleAdmin && r != models.RoleUser {
		return "", fmt.Errorf("role must be %q or %q", models.RoleAdmin, models.RoleUser)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}

	jwtService := auth.NewJWTService([]byte(secret), ttl)
	return jwtService.GenerateToken(&models.User{Username: username, Role: r})
}
