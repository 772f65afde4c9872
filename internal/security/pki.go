package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultCAValidDays is the default CA validity (10 years).
	DefaultCAValidDays = 3650
	// DefaultCertValidDays is the default leaf certificate validity (1 year).
	DefaultCertValidDays = 365

	caCertName = "ca.crt"
	caKeyName  = "ca.key"
	orgName    = "NetWatch"
)

// Usage selects the extended key usage of an issued certificate.
type Usage int

const (
	// UsageServer issues a certificate for the HTTP API.
	UsageServer Usage = iota
	// UsageClient issues a certificate for a poller authenticating with mTLS.
	UsageClient
)

// CertRequest describes a leaf certificate to issue.
type CertRequest struct {
	Name      string   // file base name and common name
	Hosts     []string // DNS names or IPs added to the SAN
	Usage     Usage
	ValidDays int
}

// IssuedFiles names the PEM files written for a certificate.
type IssuedFiles struct {
	CertFile string
	KeyFile  string
}

// InitCA creates a self-signed CA in dir as ca.crt and ca.key.
func InitCA(dir string, validDays int) (IssuedFiles, error) {
	if validDays <= 0 {
		validDays = DefaultCAValidDays
	}
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return IssuedFiles{}, fmt.Errorf("generate CA key: %w", err)
	}
	serial, err := newSerial()
	if err != nil {
		return IssuedFiles{}, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{orgName}, CommonName: orgName + " CA"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.AddDate(0, 0, validDays),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return IssuedFiles{}, fmt.Errorf("create CA certificate: %w", err)
	}
	return writePair(dir, "ca", der, key)
}

// LoadCA reads the CA certificate and key from dir.
func LoadCA(dir string) (*x509.Certificate, crypto.Signer, error) {
	certDER, err := readPEM(filepath.Join(dir, caCertName), "CERTIFICATE")
	if err != nil {
		return nil, nil, fmt.Errorf("read CA certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, nil, fmt.Errorf("parse CA certificate: %w", err)
	}
	if !cert.IsCA {
		return nil, nil, errors.New("ca.crt is not a CA certificate")
	}

	keyDER, err := readPEM(filepath.Join(dir, caKeyName), "PRIVATE KEY")
	if err != nil {
		return nil, nil, fmt.Errorf("read CA key: %w", err)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		return nil, nil, fmt.Errorf("parse CA key: %w", err)
	}
	signer, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, nil, errors.New("CA key cannot sign")
	}
	return cert, signer, nil
}

// IssueCert signs a leaf certificate with the CA in caDir and writes
// <name>.crt and <name>.key to outputDir. Server certificates always
// cover localhost.
func IssueCert(caDir, outputDir string, req CertRequest) (IssuedFiles, error) {
	if req.Name == "" || strings.ContainsAny(req.Name, `/\`) || req.Name == "ca" {
		return IssuedFiles{}, fmt.Errorf("invalid certificate name %q", req.Name)
	}
	if req.ValidDays <= 0 {
		req.ValidDays = DefaultCertValidDays
	}

	caCert, caKey, err := LoadCA(caDir)
	if err != nil {
		return IssuedFiles{}, err
	}
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return IssuedFiles{}, fmt.Errorf("generate key: %w", err)
	}
	serial, err := newSerial()
	if err != nil {
		return IssuedFiles{}, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{Organization: []string{orgName}, CommonName: req.Name},
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.AddDate(0, 0, req.ValidDays),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	hosts := req.Hosts
	switch req.Usage {
	case UsageServer:
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
		hosts = appendUnique(hosts, "localhost", "127.0.0.1", "::1")
	case UsageClient:
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	default:
		return IssuedFiles{}, fmt.Errorf("unknown certificate usage %d", req.Usage)
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else if h != "" {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, caCert, &key.PublicKey, caKey)
	if err != nil {
		return IssuedFiles{}, fmt.Errorf("create certificate: %w", err)
	}
	return writePair(outputDir, req.Name, der, key)
}

func newSerial() (*big.Int, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial number: %w", err)
	}
	return serial, nil
}

// writePair writes the certificate (0644) and private key (0600) as PEM.
func writePair(dir, name string, certDER []byte, key *ecdsa.PrivateKey) (IssuedFiles, error) {
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return IssuedFiles{}, fmt.Errorf("marshal key: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return IssuedFiles{}, fmt.Errorf("create output directory: %w", err)
	}

	files := IssuedFiles{
		CertFile: filepath.Join(dir, name+".crt"),
		KeyFile:  filepath.Join(dir, name+".key"),
	}
	if err := os.WriteFile(files.CertFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}), 0o644); err != nil {
		return IssuedFiles{}, fmt.Errorf("write certificate: %w", err)
	}
	if err := os.WriteFile(files.KeyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		return IssuedFiles{}, fmt.Errorf("write key: %w", err)
	}
	return files, nil
}

func readPEM(path, blockType string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != blockType {
		return nil, fmt.Errorf("%s: no %s PEM block", path, blockType)
	}
	return block.Bytes, nil
}

func appendUnique(slice []string, items ...string) []string {
	out := append([]string(nil), slice...)
	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[s] = true
	}
	for _, item := range items {
		if !seen[item] {
			out = append(out, item)
			seen[item] = true
		}
	}
	return out
}
