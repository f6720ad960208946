package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSMode(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{
			name: "disabled mode",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem"},
		},
		{
			name: "server mode with vault content",
			tls:  TLSConfig{Mode: "server", CertContent: "CERT", KeyContent: "KEY"},
		},
		{
			name: "server mode mixing sources per item",
			tls:  TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", KeyContent: "KEY"},
		},
		{
			name:     "server mode missing key",
			tls:      TLSConfig{Mode: "server", CertFile: "/tls/cert.pem"},
			errorMsg: "TLS certificate and key are required for server mode",
		},
		{
			name:     "server mode duplicate cert source",
			tls:      TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", CertContent: "CERT", KeyFile: "/tls/key.pem"},
			errorMsg: "cannot specify both certFile and certContent",
		},
		{
			name:     "server mode duplicate key source",
			tls:      TLSConfig{Mode: "server", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem", KeyContent: "KEY"},
			errorMsg: "cannot specify both keyFile and keyContent",
		},
		{
			name: "mutual mode valid",
			tls:  TLSConfig{Mode: "mutual", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem", CAFile: "/tls/ca.pem"},
		},
		{
			name:     "mutual mode missing CA",
			tls:      TLSConfig{Mode: "mutual", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem"},
			errorMsg: "CA certificate is required for mutual TLS mode",
		},
		{
			name:     "mutual mode duplicate CA source",
			tls:      TLSConfig{Mode: "mutual", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem", CAFile: "/tls/ca.pem", CAContent: "CA"},
			errorMsg: "cannot specify both caFile and caContent",
		},
		{
			name:     "mutual mode bad client auth policy",
			tls:      TLSConfig{Mode: "mutual", CertFile: "/tls/cert.pem", KeyFile: "/tls/key.pem", CAFile: "/tls/ca.pem", ClientAuthPolicy: "always"},
			errorMsg: "invalid clientAuthPolicy: always",
		},
		{
			name:     "invalid mode",
			tls:      TLSConfig{Mode: "invalid"},
			errorMsg: "invalid TLS mode: invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLSMode(tt.tls)
			if tt.errorMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTLSVersion(t *testing.T) {
	for _, v := range []string{"", "1.2", "1.3"} {
		assert.NoError(t, validateTLSVersion(v), v)
	}
	for _, v := range []string{"1.0", "1.1", "tls13"} {
		err := validateTLSVersion(v)
		assert.Error(t, err, v)
		assert.Contains(t, err.Error(), "invalid TLS minVersion")
	}
}

func TestValidateTLSConfigIntegration(t *testing.T) {
	cfg := &Config{Server: ServerConfig{TLS: TLSConfig{
		Mode:       "server",
		CertFile:   "/tls/cert.pem",
		KeyFile:    "/tls/key.pem",
		MinVersion: "1.3",
	}}}
	assert.NoError(t, cfg.ValidateTLSConfig())

	cfg.Server.TLS.MinVersion = "1.1"
	assert.Error(t, cfg.ValidateTLSConfig())
}
