package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aiwolfdial/whos-the-ai/core"
	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
	"github.com/joho/godotenv"
)

var (
	version  string
	revision string
	build    string
)

func main() {
	var (
		configPath = flag.String("c", "./config/default.yml", "path to the config file")
		envPath    = flag.String("e", "./config/.env", "path to the .env file")
		receiver   = flag.Bool("t", false, "print a token for the realtime viewer and exit")
	)
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil {
		slog.Info("no .env file loaded", "path", *envPath)
	}

	config, err := model.LoadFromPath(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel()})))

	if *receiver {
		token, err := util.IssueReceiverToken(config.Server.Authentication.Secret, 0)
		if err != nil {
			slog.Error("failed to issue receiver token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	core.SetVersion(version, revision, build)
	server, err := core.NewServer(*config)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	if err := server.Run(); err != nil {
		os.Exit(1)
	}
}
