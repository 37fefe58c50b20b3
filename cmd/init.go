package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"davtidy/pkg/credentials"
	"davtidy/pkg/usecase"
)

func buildInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Store the WebDAV password in the OS keyring and test the connection",
		Long: `Asks for the WebDAV password interactively, stores it in the OS
credential store under a service id derived from the configured server
address, and verifies the credentials by listing the server root.

The config file (webdav address and username) must exist first; see
--config for its location.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	logger, closer, err := buildLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("WebDAV server: %s\n", cfg.WebDAV.Address)
	fmt.Printf("Username:      %s\n", cfg.WebDAV.Username)
	fmt.Print("Please enter your WebDAV password: ")
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("empty password")
	}

	service, _, err := buildServiceWithPassword(logger, cfg, string(secret))
	if err != nil {
		return err
	}

	err = service.RunInit(cmd.Context(), credentials.Keyring{}, usecase.InitRequest{
		Service:  credentials.ServiceName(cfg.WebDAV.Address),
		Username: cfg.WebDAV.Username,
		Secret:   string(secret),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Connection successful - you are ready to go.")
	return nil
}
