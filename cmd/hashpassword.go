package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// minAdminPasswordLength rejects trivially guessable admin secrets
const minAdminPasswordLength = 8

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-admin-password PASSWORD",
	Short: "Print a bcrypt hash to use as ADMIN_PASSWORD",
	Long:  "Prints a bcrypt hash of PASSWORD. Set ADMIN_PASSWORD to the hash so the plain secret is not kept in the environment.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		hash, err := hashAdminPassword(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.OutOrStdout(), hash)
		return err
	},
}

func hashAdminPassword(password string) (string, error) {
	if len(password) < minAdminPasswordLength {
		return "", errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
