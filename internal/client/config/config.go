package config

import "time"

// Config holds runtime settings for the qrscan client.
//
// Secrets (CredentialSecret, KeystorePassphrase) have no default; the
// harness prompts for them when they are left empty.
type Config struct {
	ServerBaseURL      string
	DatabasePath       string
	CredentialSecret   string
	CredentialTTL      time.Duration
	KeystorePassphrase string
	Platform           string

	CooldownWindow time.Duration
	ResumeDelay    time.Duration

	SearchURL      string
	PaymentSchemes []string
	WalletURI      string
	SourceMarker   string
	StoreURL       string

	// Simulated device capabilities.
	MaxZoom         float64
	HasTorch        bool
	WalletInstalled bool

	HTTPRetryMax int

	// Tracing of remote calls. An empty OTLPEndpoint disables it.
	OTLPEndpoint     string
	OTLPProtocol     string
	OTLPInsecure     bool
	TraceSampleRatio float64
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "qrscan.db"
	c.CredentialTTL = 5 * time.Minute
	c.Platform = "terminal"
	c.CooldownWindow = 2 * time.Second
	c.ResumeDelay = 2 * time.Second
	c.SearchURL = "https://www.google.com/search?q="
	c.PaymentSchemes = []string{"upi"}
	c.WalletURI = "phonepe://pay"
	c.SourceMarker = "source=upi_qr"
	c.StoreURL = "https://play.google.com/store/apps/details?id=com.phonepe.app"
	c.MaxZoom = 5
	c.HasTorch = true
	c.HTTPRetryMax = 0
	c.OTLPProtocol = "http/protobuf"
	c.TraceSampleRatio = 1
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
