package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/databases"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash of a password, read from stdin when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHashPassword,
}

var createAdminFlags struct {
	email    string
	name     string
	password string
	roles    []string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register a dashboard admin",
	RunE:  runCreateAdmin,
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&createAdminFlags.email, "email", "", "Admin email (required)")
	f.StringVar(&createAdminFlags.name, "name", "", "Display name")
	f.StringVar(&createAdminFlags.password, "password", "", "Initial password (required)")
	f.StringSliceVar(&createAdminFlags.roles, "role", nil, "Role, repeatable (default admin)")

	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password is empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	a, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	admin, err := databases.CreateAdmin(cmd.Context(), a.AdminDB, createAdminFlags.email, createAdminFlags.name, createAdminFlags.password, createAdminFlags.roles)
	if errors.Is(err, databases.ErrAdminExists) {
		return fmt.Errorf("%s is already registered", createAdminFlags.email)
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s) roles=%s\n", admin.Email, admin.ID.Hex(), strings.Join(admin.Roles, ","))
	return nil
}
