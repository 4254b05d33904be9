package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Args:  cobra.ExactArgs(1),
	Short: "Log in and store the session",
}

func init() {
	p := loginCmd.Flags()
	password := p.StringP(
		"password", "p", "",
		"account password\n(read from TOURNEYCTL_PASSWORD or stdin when empty)")

	loginCmd.RunE = func(cmd *cobra.Command, args []string) error {
		pass := *password
		if pass == "" {
			pass = os.Getenv("TOURNEYCTL_PASSWORD")
		}
		if pass == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			pass = strings.TrimRight(line, "\r\n")
		}

		c, store, err := openClient()
		if err != nil {
			return err
		}
		user, err := c.Login(cmd.Context(), args[0], pass)
		if err != nil {
			return err
		}
		if err := store.Save(c.Session()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Username, user.AccountType)
		return nil
	}
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Args:  cobra.ExactArgs(0),
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, store, err := openClient()
		if err != nil {
			return err
		}
		logoutErr := c.Logout(cmd.Context())
		if err := store.Save(c.Session()); err != nil {
			return err
		}
		if logoutErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: server logout failed:", logoutErr)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Args:  cobra.ExactArgs(0),
	Short: "Show the logged in account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, store, err := openClient()
		if err != nil {
			return err
		}
		user, err := c.Me(cmd.Context())
		if err != nil {
			// A 401 clears the session; persist that.
			if c.Session().Token == "" {
				_ = store.Save(c.Session())
			}
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", user.Username, user.Email)
		fmt.Fprintf(out, "account: %s\n", user.AccountType)
		if !c.Session().ExpiresAt.IsZero() {
			fmt.Fprintf(out, "session expires: %s\n", c.Session().ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}
