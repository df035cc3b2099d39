// Command eventstream serves Server-Sent Events and administers the
// client registry.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
