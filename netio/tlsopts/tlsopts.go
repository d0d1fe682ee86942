// Package tlsopts builds a crypto/tls.Config from the connection-level TLS
// options a MySQL/MariaDB client exposes, the same five-mode knob
// (disable/prefer/require/verify-ca/verify-full) every client driver in the
// ecosystem surfaces.
package tlsopts

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

// Mode selects how strictly the TLS upgrade verifies the server.
type Mode int

const (
	// Disable never attempts a TLS upgrade.
	Disable Mode = iota
	// Prefer upgrades to TLS when the server advertises support for it, but
	// falls back to plaintext without error when it does not.
	Prefer
	// Require upgrades to TLS and fails the connection if the server does
	// not support it, but does not verify the server's certificate.
	Require
	// VerifyCA upgrades to TLS and verifies the server certificate against
	// Options.RootCAs, but does not check the certificate's hostname.
	VerifyCA
	// VerifyFull upgrades to TLS, verifies the certificate against
	// Options.RootCAs, and checks it against Options.Domain.
	VerifyFull
)

// ErrDomainRequired is returned by Build when Mode is VerifyFull and no
// Domain was supplied to check the server certificate against.
var ErrDomainRequired = errors.New("tlsopts: VerifyFull requires a domain to verify the server certificate against")

// Options configures the TLS upgrade for a single connection attempt.
type Options struct {
	Mode Mode

	// Cert and Key are an optional client certificate/key pair, PEM encoded,
	// presented to the server for mutual TLS.
	Cert []byte
	Key  []byte

	// RootCAs is an optional PEM-encoded certificate bundle used instead of
	// the host's trust store to verify the server certificate.
	RootCAs []byte

	// Domain is the server name checked against the certificate under
	// VerifyFull, and sent as the TLS SNI extension whenever it is set.
	Domain string
}

// Active reports whether Options requests any TLS upgrade at all.
func (o Options) Active() bool {
	return o.Mode != Disable
}

// Build constructs the *tls.Config a connection should use to upgrade its
// transport, per Mode:
//
//	Disable    -> (nil, nil), caller must not upgrade
//	Prefer     -> InsecureSkipVerify, upgrade opportunistically
//	Require    -> InsecureSkipVerify, upgrade mandatory
//	VerifyCA   -> verify certificate chain, skip hostname check
//	VerifyFull -> verify certificate chain and hostname (Domain required)
func (o Options) Build() (*tls.Config, error) {
	if o.Mode == Disable {
		return nil, nil
	}

	cfg := &tls.Config{
		ServerName: o.Domain,
	}

	switch o.Mode {
	case Prefer, Require:
		cfg.InsecureSkipVerify = true
	case VerifyCA:
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = verifyChainOnly(o)
	case VerifyFull:
		if o.Domain == "" {
			return nil, ErrDomainRequired
		}
	default:
		return nil, fmt.Errorf("tlsopts: unknown mode %d", o.Mode)
	}

	if len(o.RootCAs) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(o.RootCAs) {
			return nil, errors.New("tlsopts: no certificates found in RootCAs PEM bundle")
		}
		cfg.RootCAs = pool
	}

	if len(o.Cert) > 0 && len(o.Key) > 0 {
		cert, err := tls.X509KeyPair(o.Cert, o.Key)
		if err != nil {
			return nil, fmt.Errorf("tlsopts: loading client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// verifyChainOnly builds a VerifyPeerCertificate callback that checks the
// certificate chain against RootCAs (or the system pool) without checking
// the leaf's hostname, since crypto/tls only skips hostname checks when
// InsecureSkipVerify disables chain verification too.
func verifyChainOnly(o Options) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		var pool *x509.CertPool
		if len(o.RootCAs) > 0 {
			pool = x509.NewCertPool()
			pool.AppendCertsFromPEM(o.RootCAs)
		}

		if len(rawCerts) == 0 {
			return errors.New("tlsopts: server presented no certificates")
		}
		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("tlsopts: parsing server certificate: %w", err)
		}

		intermediates := x509.NewCertPool()
		for _, raw := range rawCerts[1:] {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				continue
			}
			intermediates.AddCert(cert)
		}

		_, err = leaf.Verify(x509.VerifyOptions{
			Roots:         pool,
			Intermediates: intermediates,
		})
		return err
	}
}
