package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pinncheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pinncheck",
		Short: "Smoke verification for the Pinn notes frontend",
		Long: `pinncheck drives a headless Chrome against a running frontend,
captures a screenshot, and probes for expected UI state.

With no flags it performs the Pinn onboarding check: open the dev server at
http://localhost:5173 in a fresh browsing context, wait for the client to
render, screenshot, and report whether the onboarding screen is visible.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInspectCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
