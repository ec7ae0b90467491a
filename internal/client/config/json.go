package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/qrscan/internal/flagx"
	"github.com/dmitrijs2005/qrscan/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-valued fields mark keys that were absent from the file.
type JsonConfig struct {
	ServerBaseURL      string         `json:"server_base_url"`
	DatabasePath       string         `json:"database_path"`
	CredentialSecret   string         `json:"credential_secret"`
	CredentialTTL      timex.Duration `json:"credential_ttl"`
	KeystorePassphrase string         `json:"keystore_passphrase"`
	Platform           string         `json:"platform"`
	CooldownWindow     timex.Duration `json:"cooldown_window"`
	ResumeDelay        timex.Duration `json:"resume_delay"`
	SearchURL          string         `json:"search_url"`
	PaymentSchemes     []string       `json:"payment_schemes"`
	WalletURI          string         `json:"wallet_uri"`
	SourceMarker       string         `json:"source_marker"`
	StoreURL           string         `json:"store_url"`
	MaxZoom            float64        `json:"max_zoom"`
	HasTorch           *bool          `json:"has_torch"`
	WalletInstalled    *bool          `json:"wallet_installed"`
	HTTPRetryMax       *int           `json:"http_retry_max"`
	OTLPEndpoint       string         `json:"otlp_endpoint"`
	OTLPProtocol       string         `json:"otlp_protocol"`
	OTLPInsecure       *bool          `json:"otlp_insecure"`
	TraceSampleRatio   *float64       `json:"trace_sample_ratio"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The path comes from -c/-config or $QRSCAN_CONFIG (flagx.JsonConfigFlags).
// When no path is set nothing is loaded. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc JsonConfig) apply(cfg *Config) {
	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.CredentialSecret, jc.CredentialSecret)
	setString(&cfg.KeystorePassphrase, jc.KeystorePassphrase)
	setString(&cfg.Platform, jc.Platform)
	setString(&cfg.SearchURL, jc.SearchURL)
	setString(&cfg.WalletURI, jc.WalletURI)
	setString(&cfg.SourceMarker, jc.SourceMarker)
	setString(&cfg.StoreURL, jc.StoreURL)
	setString(&cfg.OTLPEndpoint, jc.OTLPEndpoint)
	setString(&cfg.OTLPProtocol, jc.OTLPProtocol)

	if jc.CredentialTTL.Duration > 0 {
		cfg.CredentialTTL = jc.CredentialTTL.Duration
	}
	if jc.CooldownWindow.Duration > 0 {
		cfg.CooldownWindow = jc.CooldownWindow.Duration
	}
	if jc.ResumeDelay.Duration > 0 {
		cfg.ResumeDelay = jc.ResumeDelay.Duration
	}
	if len(jc.PaymentSchemes) > 0 {
		cfg.PaymentSchemes = jc.PaymentSchemes
	}
	if jc.MaxZoom > 0 {
		cfg.MaxZoom = jc.MaxZoom
	}
	if jc.HasTorch != nil {
		cfg.HasTorch = *jc.HasTorch
	}
	if jc.WalletInstalled != nil {
		cfg.WalletInstalled = *jc.WalletInstalled
	}
	if jc.HTTPRetryMax != nil {
		cfg.HTTPRetryMax = *jc.HTTPRetryMax
	}
	if jc.OTLPInsecure != nil {
		cfg.OTLPInsecure = *jc.OTLPInsecure
	}
	if jc.TraceSampleRatio != nil {
		cfg.TraceSampleRatio = *jc.TraceSampleRatio
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
