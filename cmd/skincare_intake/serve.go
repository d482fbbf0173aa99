package main

import (
	"fmt"
	"log"

	"github.com/jonathan/skincare-intake/internal/config"
	"github.com/jonathan/skincare-intake/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveConfigFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake web server",
	Long:  `Start an HTTP server that serves the intake form, forwards submissions to the webhook and renders the results.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to a JSON config file")
	rootCmd.AddCommand(serveCmd)
}

// serverConfig resolves the effective configuration for the server.
func serverConfig() (config.Config, server.Config, error) {
	cfg, err := config.Load(serveConfigFile)
	if err != nil {
		return config.Config{}, server.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return config.Config{}, server.Config{}, err
		}
	}

	return cfg, server.Config{
		Port:           cfg.Port,
		WebhookURL:     cfg.WebhookURL,
		WebhookTimeout: cfg.WebhookTimeout(),
		Limits:         cfg.Limits(),
	}, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, srvCfg, err := serverConfig()
	if err != nil {
		return err
	}

	logCloser := config.ConfigureLogging(cfg.LogFile)
	defer func() { _ = logCloser.Close() }()

	log.Printf("Config: port=%d webhook_configured=%t timeout=%v max_images=%d max_image_bytes=%d",
		cfg.Port, cfg.WebhookURL != "", cfg.WebhookTimeout(), cfg.MaxImages, cfg.MaxImageBytes)

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
