package telemetry

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrNoCertificates is returned when the collector CA bundle holds no PEM certificate.
var ErrNoCertificates = errors.New("no CA certificates in bundle")

// getTLSConfig builds the client TLS configuration trusting the base64 encoded PEM bundle.
func getTLSConfig(caCertsBase64 string) (*tls.Config, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(caCertsBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding collector CA bundle: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, ErrNoCertificates
	}

	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
