package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/99minutos/client-console/internal/core/ports"
	"github.com/99minutos/client-console/internal/core/service"
	"github.com/99minutos/client-console/internal/infrastructure/config"
	"github.com/99minutos/client-console/internal/infrastructure/db"
	"github.com/99minutos/client-console/pkg/logger"
)

// Options is the root command. The struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Backend string `short:"b" long:"backend" description:"storage backend, overrides STORAGE_BACKEND" choice:"file" choice:"mongo" choice:"sqlite" choice:"postgres" choice:"redis" choice:"dynamodb"`
	File    string `long:"file" description:"client document for the file backend, overrides FILE_PATH"`

	Serve  ServeCmd  `command:"serve"  description:"Start the HTTP API"`
	List   ListCmd   `command:"list"   description:"List clients"`
	Show   ShowCmd   `command:"show"   description:"Show one client"`
	Add    AddCmd    `command:"add"    description:"Add a client"`
	Update UpdateCmd `command:"update" description:"Replace a client's password, expiry date and permissions"`
	Delete DeleteCmd `command:"delete" description:"Delete a client"`

	env *environment
}

func newOptions(env *environment) *Options {
	o := &Options{env: env}
	o.Serve.root = o
	o.List.root = o
	o.Show.root = o
	o.Add.root = o
	o.Update.root = o
	o.Delete.root = o
	return o
}

// environment holds the process edges so commands can run against buffers in tests.
type environment struct {
	out          io.Writer
	errOut       io.Writer
	isTerminal   func() bool
	readPassword func(prompt string) (string, error)
	loadConfig   func(ctx context.Context) (*config.Config, error)
}

func newEnvironment() *environment {
	return &environment{
		out:          os.Stdout,
		errOut:       os.Stderr,
		isTerminal:   func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		readPassword: func(prompt string) (string, error) { return readPassword(prompt, os.Stderr) },
		loadConfig:   config.Load,
	}
}

// session is one opened repository plus the console on top of it.
type session struct {
	cfg     *config.Config
	log     zerolog.Logger
	repo    ports.ClientRepository
	console *service.ConsoleService
}

func (s *session) Close(ctx context.Context) {
	if err := s.repo.Close(ctx); err != nil {
		s.log.Warn().Err(err).Msg("close storage")
	}
}

// open loads configuration, applies the global flag overrides and opens storage.
// log is nil for one-shot commands, which then log to stderr.
func (o *Options) open(ctx context.Context, log *zerolog.Logger) (*session, error) {
	cfg, err := o.env.loadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if o.Backend != "" {
		cfg.Storage.Backend = o.Backend
	}
	if o.File != "" {
		cfg.Storage.File.Path = o.File
	}

	l := logger.New(logger.Options{Level: cfg.LogLevel, Output: o.env.errOut, Pretty: true, Component: "cli"})
	if log != nil {
		l = *log
	}

	onDuplicate, err := service.ParseDuplicatePolicy(cfg.Console.OnDuplicate)
	if err != nil {
		return nil, err
	}

	repo, err := db.Open(ctx, cfg.Storage, l)
	if err != nil {
		return nil, err
	}

	console := service.NewConsoleService(repo, service.ConsoleOptions{
		OnDuplicate:   onDuplicate,
		BcryptCost:    cfg.Console.BcryptCost,
		DefaultExpiry: cfg.Console.DefaultExpiry,
	}, l)

	return &session{cfg: cfg, log: l, repo: repo, console: console}, nil
}
