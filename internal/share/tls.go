package share

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/caddyserver/certmagic"
)

// SelfSignedTLS builds an ephemeral certificate. Receivers using it require
// senders to pass insecure; fine for one-off transfers on a trusted network.
func SelfSignedTLS() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	templ := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, templ, templ, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	cert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	priv := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})
	tlsCert, err := tls.X509KeyPair(cert, priv)
	if err != nil {
		return nil, err
	}
	return &tls.Config{Certificates: []tls.Certificate{tlsCert}, NextProtos: []string{alpn}}, nil
}

// ManagedTLS provisions a certificate for domain via CertMagic (ACME) and
// returns a TLS config usable by the QUIC listener. Certificates are cached
// under the user cache dir.
func ManagedTLS(ctx context.Context, domain, email string) (*tls.Config, error) {
	if domain == "" {
		return nil, errors.New("domain is required")
	}

	cm := certmagic.NewDefault()
	dir := certCacheDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cert storage: %w", err)
	}
	cm.Storage = &certmagic.FileStorage{Path: dir}
	cm.Issuers = []certmagic.Issuer{certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:     certmagic.LetsEncryptProductionCA,
		Email:  email,
		Agreed: true,
	})}

	if err := cm.ManageSync(ctx, []string{domain}); err != nil {
		return nil, err
	}

	tlsConf := cm.TLSConfig()
	ensureALPN(tlsConf)
	tlsConf.MinVersion = tls.VersionTLS13
	return tlsConf, nil
}

func certCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "notedown", "certmagic")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "notedown", "certmagic")
}

// FileTLS loads a certificate from PEM files for BYO certs.
func FileTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("both cert and key files are required")
	}
	c, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}
	for i, b := range c.Certificate {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("invalid certificate at index %d: %w", i, err)
		}
		now := time.Now()
		if now.Before(cert.NotBefore) {
			return nil, fmt.Errorf("certificate not yet valid (starts %s)", cert.NotBefore)
		}
		if now.After(cert.NotAfter) {
			return nil, fmt.Errorf("certificate expired on %s", cert.NotAfter)
		}
	}
	return &tls.Config{Certificates: []tls.Certificate{c}, NextProtos: []string{alpn}, MinVersion: tls.VersionTLS13}, nil
}
