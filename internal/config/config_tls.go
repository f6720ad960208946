package config

import "fmt"

// pemSource names one PEM input that may come from a file or from inline
// content loaded out of Vault.
type pemSource struct {
	label   string
	file    string
	content string
}

func (p pemSource) set() bool { return p.file != "" || p.content != "" }

func (p pemSource) checkSingle() error {
	if p.file != "" && p.content != "" {
		return fmt.Errorf("cannot specify both %sFile and %sContent, choose one", p.label, p.label)
	}
	return nil
}

func (t TLSConfig) cert() pemSource { return pemSource{"cert", t.CertFile, t.CertContent} }
func (t TLSConfig) key() pemSource  { return pemSource{"key", t.KeyFile, t.KeyContent} }
func (t TLSConfig) ca() pemSource   { return pemSource{"ca", t.CAFile, t.CAContent} }

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	if err := validateTLSMode(tls); err != nil {
		return err
	}
	return validateTLSVersion(tls.MinVersion)
}

// validateTLSMode checks that each mode has the material it needs
func validateTLSMode(tls TLSConfig) error {
	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		return validateServingMaterial(tls, "server mode")
	case "mutual":
		if err := validateServingMaterial(tls, "mutual mode"); err != nil {
			return err
		}
		if !tls.ca().set() {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		if err := tls.ca().checkSingle(); err != nil {
			return err
		}
		return validateClientAuthPolicy(tls.ClientAuthPolicy)
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}
}

func validateServingMaterial(tls TLSConfig, mode string) error {
	if !tls.cert().set() || !tls.key().set() {
		return fmt.Errorf("TLS certificate and key are required for %s (provide either files or content)", mode)
	}
	for _, src := range []pemSource{tls.cert(), tls.key()} {
		if err := src.checkSingle(); err != nil {
			return err
		}
	}
	return nil
}

func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "", "require", "request", "verify":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
	}
}

func validateTLSVersion(version string) error {
	switch version {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", version)
	}
}
