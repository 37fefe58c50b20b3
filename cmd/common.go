package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"davtidy/pkg/config"
	"davtidy/pkg/credentials"
	"davtidy/pkg/logging"
	"davtidy/pkg/usecase"
	"davtidy/pkg/webdav"
)

const remoteTimeout = 60 * time.Second

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

func buildLogger() (*slog.Logger, io.Closer, error) {
	return logging.New(logging.Options{Verbose: verbose, LogFile: logFile})
}

// buildService wires config, credentials, and transport into a usecase
// service. Credential and config failures here are fatal setup errors.
func buildService(logger *slog.Logger) (*usecase.Service, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}

	service := credentials.ServiceName(cfg.WebDAV.Address)
	password, err := credentials.Resolve(credentials.Keyring{}, service, cfg.WebDAV.Username)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("resolve credentials (run 'davtidy init' first): %w", err)
	}

	return buildServiceWithPassword(logger, cfg, password)
}

func buildServiceWithPassword(logger *slog.Logger, cfg config.Config, password string) (*usecase.Service, config.Config, error) {
	client := webdav.NewClient(webdav.Options{
		Address:  cfg.WebDAV.Address,
		Username: cfg.WebDAV.Username,
		Password: password,
		Timeout:  remoteTimeout,
	})

	return usecase.New(usecase.Options{Client: client, Logger: logger}), cfg, nil
}

func printSafeModeBanner(safeMode bool) {
	if !safeMode {
		return
	}

	fmt.Println("=== SAFE MODE - no remote changes will be made ===")
	fmt.Println()
}

func printSafeModeHint(safeMode bool) {
	if !safeMode {
		return
	}

	fmt.Println()
	fmt.Println("Run without --safe-mode to apply the renames.")
}

func printSummary(lines ...string) {
	fmt.Println("=== Summary ===")
	for _, line := range lines {
		fmt.Println(line)
	}
}
