package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/qrscan/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// os.Args is filtered through flagx.FilterArgs first, so flags owned by other
// components (such as -c) never reach this FlagSet.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the activity log server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local cache database")
	fs.StringVar(&cfg.CredentialSecret, "s", cfg.CredentialSecret, "credential signing secret")
	fs.StringVar(&cfg.KeystorePassphrase, "k", cfg.KeystorePassphrase, "device identifier passphrase")
	fs.IntVar(&cfg.HTTPRetryMax, "r", cfg.HTTPRetryMax, "transport retry count")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
