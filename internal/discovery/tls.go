package discovery

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certFileName = "server.crt"
	keyFileName  = "server.key"
	certValidity = 365 * 24 * time.Hour
)

// CertBundle is a loaded or freshly generated TLS identity plus its
// SHA-256 fingerprint for client pinning (spec §4.H).
type CertBundle struct {
	Certificate tls.Certificate
	Fingerprint string // hex SHA-256 of the leaf certificate DER
}

// LoadOrGenerateCert loads server.crt/server.key from dataDir, or
// generates a fresh self-signed certificate valid for {hostname,
// "localhost", "127.0.0.1"} and persists both files (spec §4.H).
func LoadOrGenerateCert(dataDir, hostname string) (CertBundle, error) {
	certPath := filepath.Join(dataDir, certFileName)
	keyPath := filepath.Join(dataDir, keyFileName)

	if _, err := os.Stat(certPath); err == nil {
		if _, err := os.Stat(keyPath); err == nil {
			cert, err := tls.LoadX509KeyPair(certPath, keyPath)
			if err == nil {
				return bundleFromCert(cert)
			}
		}
	}

	cert, certDER, keyDER, err := generateSelfSigned(hostname)
	if err != nil {
		return CertBundle{}, fmt.Errorf("generate self-signed certificate: %w", err)
	}

	if err := os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}), 0o644); err != nil {
		return CertBundle{}, fmt.Errorf("write %s: %w", certFileName, err)
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		return CertBundle{}, fmt.Errorf("write %s: %w", keyFileName, err)
	}

	return bundleFromCert(cert)
}

func bundleFromCert(cert tls.Certificate) (CertBundle, error) {
	if len(cert.Certificate) == 0 {
		return CertBundle{}, fmt.Errorf("certificate has no leaf")
	}
	sum := sha256.Sum256(cert.Certificate[0])
	return CertBundle{
		Certificate: cert,
		Fingerprint: fmt.Sprintf("%x", sum),
	}, nil
}

// generateSelfSigned creates an ECDSA P-256 self-signed certificate
// (teacher's key-generation scheme, repurposed here for TLS identity
// rather than chain signing) covering hostname, "localhost", and
// "127.0.0.1".
func generateSelfSigned(hostname string) (tls.Certificate, []byte, []byte, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, nil, nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, nil, nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: hostname},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(certValidity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:         true,
		BasicConstraintsValid: true,
		DNSNames:     []string{hostname, "localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, nil, nil, err
	}

	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return tls.Certificate{}, nil, nil, err
	}

	cert := tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  priv,
	}
	return cert, certDER, keyDER, nil
}
