// Package security builds client TLS settings from configuration. The
// Redis client uses it to reach TLS-only deployments.
//
//	redis:
//	  addr: "cache.internal:6380"
//	  tls:
//	    enabled: true
//	    ca_file: "/etc/ssl/redis-ca.pem"
package security
