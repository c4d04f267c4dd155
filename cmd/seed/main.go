package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"account-activation/internal/config"
	"account-activation/internal/domain"
	mailAdapters "account-activation/internal/infra/adapters/mail"
	pg "account-activation/internal/infra/db/postgres"
	"account-activation/internal/infra/logging"
	"account-activation/internal/usecase"
)

// seed creates an account from the command line. With -activated the account
// is usable immediately; otherwise an activation link is issued and printed.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	email := flag.String("email", "", "account email (required)")
	name := flag.String("name", "", "display name")
	activated := flag.Bool("activated", false, "create the account already activated")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tm := pg.NewTxManager(pool)
	activator := usecase.NewActivationUseCase(pg.NewActivationRepo(pool), usecase.NewCodeGenerator(), tm, usecase.ActivationSettings{
		Lifetime:    cfg.Activation.Lifetime,
		CodeLength:  cfg.Activation.CodeLength,
		MaxAttempts: cfg.Activation.MaxAttempts,
	}, logger)
	flowUC := usecase.NewActivationFlowUseCase(pg.NewPostgresUserRepo(pool), activator, tm, mailAdapters.NewLogMailer(logger, true), nil, nil,
		usecase.FlowSettings{BaseURL: cfg.App.URL, Dev: true}, logger)

	user, a, err := flowUC.Register(ctx, *email, *name, *activated)
	if errors.Is(err, domain.ErrAlreadyExists) {
		fmt.Printf("account %s already exists. No changes.\n", *email)
		return
	}
	if err != nil {
		log.Fatalf("register %q: %v", *email, err)
	}

	fmt.Printf("created: %s (id=%s)\n", user.Email, user.ID)
	if a.IsCompleted() {
		fmt.Println("account is activated")
		return
	}
	fmt.Printf("activation link: %s\n", usecase.ActivationLink(cfg.App.URL, a.Code))
}
