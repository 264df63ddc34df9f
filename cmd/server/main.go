/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatserver/internal/config"
	"chatserver/internal/data"
	"chatserver/internal/nlog"
	"chatserver/internal/service"
	"chatserver/internal/transport"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {

	// A local .env is optional, the environment itself wins
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := nlog.NewServerLogger(cfg.LogDirectory, cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go logger.Run(ctx)
	defer logger.CloseAll()

	mainLog, err := logger.RegisterSubsystem("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		mainLog.Logf("FATAL: Database could not be opened correctly: %v", err)
		fmt.Fprintf(os.Stderr, "Database error: %v\n", err)
		os.Exit(1)
	}

	storage := data.NewStorageManager(db)
	if err := storage.Migrate(); err != nil {
		mainLog.Logf("FATAL: Database migration failed: %v", err)
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
	mainLog.Logf("Database ready")

	routerLog, _ := logger.RegisterSubsystem("router")
	reactionLog, _ := logger.RegisterSubsystem("reactions")
	historyLog, _ := logger.RegisterSubsystem("history")
	hubLog, _ := logger.RegisterSubsystem("hub")
	socketLog, _ := logger.RegisterSubsystem("socket")

	guard := storage.Guard()
	repo := storage.GetMessageRepository()

	router := service.NewMessageRouter(guard, repo, routerLog)
	reactions := service.NewReactionProcessor(guard, repo, reactionLog)
	history := service.NewHistoryLoader(guard, repo, historyLog)

	hub := transport.NewHub(router, reactions, history, hubLog)

	socketManager := transport.NewSocketManager(hub)
	socketManager.SetLogger(socketLog)

	mainLog.Logf("Relay starting on %s:%d", cfg.ServerHost, cfg.ServerPort)
	if err := socketManager.Run(ctx, &transport.SocketConfig{
		ServerHost:   cfg.ServerHost,
		ServerPort:   cfg.ServerPort,
		ReadTimeout:  30,
		WriteTimeout: 30,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}

	mainLog.Logf("Shutting off...")
}
