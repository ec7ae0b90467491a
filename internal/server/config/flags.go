package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      read header timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	readHeaderTimeout := fs.Int("t", int(config.ReadHeaderTimeout.Seconds()), "read header timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ReadHeaderTimeout = time.Duration(*readHeaderTimeout) * time.Second
}
