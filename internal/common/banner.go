package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

var bannerArt = []string{
	` ___  _   _ ___   ___ ___ _____ ___ ___`,
	`| _ )| | | |   \ / __| __|_   _| __| _ \`,
	`| _ \| |_| | |) | (_ | _|  | | | _||   /`,
	`|___/ \___/|___/ \___|___| |_| |___|_|_\`,
}

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	writeBanner(os.Stderr, config)

	info := GetVersionInfo()
	logger.Info().
		Str("version", info.Version).
		Str("build", info.Build).
		Str("commit", info.GitCommit).
		Str("environment", config.Environment).
		Str("service_url", serviceURL(config)).
		Str("storage_backend", config.Storage.Backend).
		Str("storage_address", config.StorageAddress()).
		Str("base_currency", config.Ledger.BaseCurrency).
		Msg("Application started")
}

func serviceURL(config *Config) string {
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func writeBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range bannerArt {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Budget & Investment Ledger%s\n\n%s\n\n", textColor, banner.ColorReset, hr)

	info := GetVersionInfo()
	kvLines := [][2]string{
		{"Version", info.Version},
		{"Build", info.Build},
		{"Commit", info.GitCommit},
		{"Environment", config.Environment},
		{"Service URL", serviceURL(config)},
		{"Storage", config.Storage.Backend + " (" + config.StorageAddress() + ")"},
		{"Base currency", config.Ledger.BaseCurrency},
		{"Oversell", config.Ledger.Oversell},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-16s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  BUDGETER - SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
