// galamseyctl is the operator CLI for the case service: admin accounts, the reconciled case
// view and the pending queue.
//
// Usage:
//
//	galamseyctl hash-password [password]
//	galamseyctl create-admin --email=<email> --password=<pw> [--name=<name>] [--role=owner]
//	galamseyctl reconcile [-o table|json|yaml] [--region=<r>] [--status=<s>] [--sort=<key>]
//	galamseyctl sync
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api/handlers"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "galamseyctl",
	Short: "Operate the galamsey case service",
	Long:  "galamseyctl manages dashboard admins and inspects or drains the pending case queue\nusing the same environment as the API server.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect opens the stores described by the environment. The returned func closes them.
func connect(ctx context.Context) (*handlers.App, func(), error) {
	a := &handlers.App{Config: *config.New()}
	cctx, cancel := api.WithQueryTimeout(ctx)
	defer cancel()
	if err := a.Connect(cctx); err != nil {
		a.Close(ctx)
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	return a, func() { a.Close(context.Background()) }, nil
}
