// Package config loads runtime configuration for the qrscan terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config, or the
//     QRSCAN_CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the remote activity log
//	-d string   path of the local SQLite cache
//	-s string   secret used to sign request credentials
//	-k string   passphrase sealing the device identifier
//	-r int      transport retry count (0 disables retries)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "2s" or integer
// nanoseconds. Keys that are absent keep their default:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "database_path": "qrscan.db",
//	  "credential_ttl": "5m",
//	  "cooldown_window": "2s",
//	  "resume_delay": "2s",
//	  "payment_schemes": ["upi"],
//	  "wallet_uri": "phonepe://pay",
//	  "http_retry_max": 0,
//	  "otlp_endpoint": "localhost:4318",
//	  "otlp_protocol": "http/protobuf",
//	  "otlp_insecure": true,
//	  "trace_sample_ratio": 1
//	}
//
// Remote-call tracing stays off while otlp_endpoint is empty.
package config
