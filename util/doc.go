// Package util holds small parsing and display helpers shared by the
// configuration-facing packages.
package util
