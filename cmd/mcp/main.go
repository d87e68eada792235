package main

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/junkd0g/streakcal/internal/badge"
	"github.com/junkd0g/streakcal/internal/config"
	"github.com/junkd0g/streakcal/internal/logger"
	"github.com/junkd0g/streakcal/internal/profile"
	"github.com/junkd0g/streakcal/internal/tools"
)

func main() {
	// stdout carries the MCP protocol, so logs go to stderr
	logger.New(os.Stderr, os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	svc := badge.NewService(profile.NewClient(cfg.ProfileAPIURL, cfg.UpstreamTimeout), badge.Config{
		Theme:         cfg.Theme,
		Weeks:         cfg.TotalWeeks,
		Location:      cfg.Location,
		DefaultFormat: cfg.DefaultFormat,
	})

	s := server.NewMCPServer(
		"streakcal",
		"1.0.0",
	)

	tools.Register(s, svc)

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
