package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/gallery/internal/users"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the server and remember the account",
	Long: `Sign in with a username and password. The account is saved in the local
store and owns favorites and new entries until logout. The password is read
from stdin when --password is not given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, func(a *app, creds users.Credentials) (*users.User, error) {
			remote, err := a.requireRemote()
			if err != nil {
				return nil, err
			}
			return remote.Login(cmd.Context(), creds)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a server account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, func(a *app, creds users.Credentials) (*users.User, error) {
			remote, err := a.requireRemote()
			if err != nil {
				return nil, err
			}
			return remote.Register(cmd.Context(), creds)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.store.Session.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account that owns favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if a.owner.ID == "" && a.owner.Username == "" {
				return errors.New("not signed in")
			}
			if flagJSON {
				return writeJSON(cmd.OutOrStdout(), a.owner)
			}
			printField(cmd.OutOrStdout(), "Username", a.owner.Username)
			printField(cmd.OutOrStdout(), "ID", a.owner.ID.String())
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringP("username", "u", "", "account name")
		c.Flags().StringP("password", "p", "", "account password")
		c.MarkFlagRequired("username")
	}
}

func authenticate(cmd *cobra.Command, fn func(*app, users.Credentials) (*users.User, error)) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if password == "" {
		p, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return err
		}
		password = p
	}

	creds := users.Credentials{Username: strings.TrimSpace(username), Password: password}

	return withApp(cmd.Context(), func(a *app) error {
		u, err := fn(a, creds)
		if err != nil {
			return err
		}
		if err := a.store.Session.Save(cmd.Context(), *u); err != nil {
			return err
		}
		printSuccess("Signed in as %s (id %s, %s)", u.Username, u.ID, u.Role)
		return nil
	})
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password required")
	}
	return line, nil
}
