package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/qrscan/internal/flagx"
	"github.com/dmitrijs2005/qrscan/internal/timex"
)

// JsonConfig is the JSON form of Config. Durations use timex.Duration, so
// both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddr      string         `json:"endpoint_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	ReadHeaderTimeout timex.Duration `json:"read_header_timeout"`
}

// parseJson loads configuration values from the JSON file named by -c,
// -config or $QRSCAN_CONFIG into config. Keys missing from the file keep
// their current value. Unreadable or invalid files panic.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.ReadHeaderTimeout.Duration > 0 {
		config.ReadHeaderTimeout = c.ReadHeaderTimeout.Duration
	}
}
