package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tournament-platform/client"
)

var rootCmd = &cobra.Command{
	Version:       "indev",
	Use:           "tourneyctl",
	Short:         "Browse tournaments and manage your registrations",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	serverFlag  *string
	sessionFlag *string
)

func init() {
	defaultSession, err := client.DefaultSessionPath()
	if err != nil {
		defaultSession = "tourneyctl-session.toml"
	}

	p := rootCmd.PersistentFlags()
	serverFlag = p.StringP(
		"server", "s", "",
		"API base url (stored in the session after login)")
	sessionFlag = p.String(
		"session", defaultSession,
		"session file")
}

// openClient loads the session file and returns a client bound to it.
func openClient() (*client.Client, client.FileSessionStore, error) {
	store := client.FileSessionStore{Path: *sessionFlag}
	session, err := store.Load()
	if err != nil {
		return nil, store, err
	}
	if *serverFlag != "" {
		session.BaseURL = *serverFlag
	}
	if session.BaseURL == "" {
		session.BaseURL = "http://localhost:5200"
	}
	return client.New(session, nil), store, nil
}

func main() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(myRegistrationsCmd)
	rootCmd.AddCommand(cancelCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
