package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/netwatch/internal/security"
)

var (
	caDir         string
	caValidDays   int
	certName      string
	certOutputDir string
	certValidDays int
	certHosts     string
)

var caCmd = &cobra.Command{
	Use:   "ca",
	Short: "Certificate Authority management",
	Long:  `Commands for managing the CA that signs API server and poller certificates.`,
}

var caInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new Certificate Authority",
	Long: `Create ca.crt and ca.key in the CA directory.

Point server.tls.client_ca_file at ca.crt to require poller certificates.

Example:
  netwatchctl ca init --dir /etc/netwatch/pki`,
	RunE: func(cmd *cobra.Command, args []string) error {
		PrintVerbose("Generating CA in %s (%d days)", caDir, caValidDays)
		files, err := security.InitCA(caDir, caValidDays)
		if err != nil {
			return fmt.Errorf("generate CA: %w", err)
		}
		printIssued(cmd, "CA certificate", files)
		return nil
	},
}

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Certificate management",
	Long:  `Commands for issuing API server and poller client certificates.`,
}

var certServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Issue an API server certificate",
	Long: `Issue a server certificate signed by the CA. localhost is always
included in the Subject Alternative Names.

Example:
  netwatchctl cert server --ca-dir ./pki --name api --hosts netwatch.noc.local,10.0.0.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issue(cmd, security.UsageServer, parseHosts(certHosts))
	},
}

var certClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Issue a poller client certificate",
	Long: `Issue a client certificate signed by the CA for a poller that
authenticates to the API with mutual TLS.

Example:
  netwatchctl cert client --ca-dir ./pki --name poller-dc1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return issue(cmd, security.UsageClient, nil)
	},
}

func init() {
	rootCmd.AddCommand(caCmd, certCmd)
	caCmd.AddCommand(caInitCmd)
	certCmd.AddCommand(certServerCmd, certClientCmd)

	caInitCmd.Flags().StringVar(&caDir, "dir", "", "CA directory (required)")
	caInitCmd.Flags().IntVar(&caValidDays, "valid-days", security.DefaultCAValidDays, "certificate validity in days")
	caInitCmd.MarkFlagRequired("dir")

	for _, c := range []*cobra.Command{certServerCmd, certClientCmd} {
		c.Flags().StringVar(&caDir, "ca-dir", "", "CA directory (required)")
		c.Flags().StringVarP(&certName, "name", "n", "", "certificate name (required)")
		c.Flags().StringVar(&certOutputDir, "out", "", "output directory (default: CA directory)")
		c.Flags().IntVar(&certValidDays, "valid-days", security.DefaultCertValidDays, "certificate validity in days")
		c.MarkFlagRequired("ca-dir")
		c.MarkFlagRequired("name")
	}
	certServerCmd.Flags().StringVar(&certHosts, "hosts", "", "comma-separated additional hosts/IPs")
}

func issue(cmd *cobra.Command, usage security.Usage, hosts []string) error {
	out := certOutputDir
	if out == "" {
		out = caDir
	}
	PrintVerbose("Issuing %s from %s into %s", certName, caDir, out)

	files, err := security.IssueCert(caDir, out, security.CertRequest{
		Name:      certName,
		Hosts:     hosts,
		Usage:     usage,
		ValidDays: certValidDays,
	})
	if err != nil {
		return fmt.Errorf("issue certificate: %w", err)
	}
	printIssued(cmd, "Certificate", files)
	return nil
}

func printIssued(cmd *cobra.Command, what string, files security.IssuedFiles) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s generated:\n", what)
	fmt.Fprintf(w, "  Certificate: %s\n", files.CertFile)
	fmt.Fprintf(w, "  Private key: %s\n", files.KeyFile)
}

func parseHosts(hosts string) []string {
	var out []string
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
