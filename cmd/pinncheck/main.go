// Package main provides the entry point for the pinncheck CLI.
//
// pinncheck is a smoke-verification tool for the Pinn notes frontend. It
// drives a headless Chrome against a running dev server, captures
// screenshots, and probes for expected UI state.
//
// Usage:
//
//	pinncheck run
//	pinncheck run --suite checks.yaml
//	pinncheck serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
