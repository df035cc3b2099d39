// Package version reports the build of the running binary.
//
// Values come from -ldflags when set and from the embedded VCS build
// settings otherwise:
//
//	go build -ldflags "-X github.com/kbukum/eventstream/version.Version=1.4.0" ./cmd/eventstream
package version
