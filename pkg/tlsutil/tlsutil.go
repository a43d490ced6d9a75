// Package tlsutil loads and generates TLS material for the KARA gRPC listener.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// ServerCredentials loads a key pair for a gRPC server. Both paths must be
// set or both empty; with both empty it returns nil credentials and the
// caller serves plaintext.
func ServerCredentials(certFile, keyFile string) (credentials.TransportCredentials, error) {
	switch {
	case certFile == "" && keyFile == "":
		return nil, nil
	case certFile == "" || keyFile == "":
		return nil, errors.New("tlsutil: both certificate and key files are required")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}

	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// ClientCredentials trusts the PEM certificate in caFile, or the system pool
// when caFile is empty.
func ClientCredentials(caFile, serverName string) (credentials.TransportCredentials, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
	}

	if caFile != "" {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("tlsutil: read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("tlsutil: no certificate found in %s", caFile)
		}
		cfg.RootCAs = pool
	}

	return credentials.NewTLS(cfg), nil
}

// DevCertificate locates a generated certificate and its key.
type DevCertificate struct {
	CertFile string
	KeyFile  string
}

// GenerateDevCertificate writes a self-signed server certificate valid for
// hosts into outDir as cert.pem and key.pem. It is meant for local runs and
// tests.
func GenerateDevCertificate(hosts []string, outDir string, validFor time.Duration) (DevCertificate, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return DevCertificate{}, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return DevCertificate{}, fmt.Errorf("tlsutil: generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return DevCertificate{}, fmt.Errorf("tlsutil: serial number: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"KARA Dev"}},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validFor),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return DevCertificate{}, fmt.Errorf("tlsutil: create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return DevCertificate{}, fmt.Errorf("tlsutil: marshal key: %w", err)
	}

	out := DevCertificate{
		CertFile: filepath.Join(outDir, "cert.pem"),
		KeyFile:  filepath.Join(outDir, "key.pem"),
	}
	if err := writePEM(out.CertFile, "CERTIFICATE", der); err != nil {
		return DevCertificate{}, err
	}
	if err := writePEM(out.KeyFile, "EC PRIVATE KEY", keyDER); err != nil {
		return DevCertificate{}, err
	}
	return out, nil
}

func writePEM(path, blockType string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", path, err)
	}
	defer f.Close()
	return pem.Encode(f, &pem.Block{Type: blockType, Bytes: data})
}
