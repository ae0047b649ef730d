package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/agent"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/ai"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/app"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/credential"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/mailbox"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/smtp"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/store"
)

func main() {
	// Credentials may live in a local .env during development.
	_ = godotenv.Load()

	logFile, err := os.OpenFile("email-assistant.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Println("Application starting...")

	configPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The model credential is required before the loop begins; without
	// it no draft can ever be synthesized.
	apiKey := credential.Resolve("ANTHROPIC_API_KEY", credential.KeyAPIKey)
	if apiKey == "" {
		log.Fatalf("No model API key found. Set ANTHROPIC_API_KEY or store %q in the keyring.",
			credential.KeyAPIKey)
	}

	// A missing SMTP password is not fatal; it surfaces later as an
	// authentication failure on the first send attempt.
	smtpPassword := credential.Resolve("SMTP_PASSWORD", credential.KeySMTPPassword)

	if err := os.MkdirAll(filepath.Dir(cfg.History.DBPath), 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.NewSQLiteStore(cfg.History.DBPath)
	if err != nil {
		log.Fatalf("Failed to open send-history store: %v", err)
	}
	defer st.Close()

	client := ai.NewClient(apiKey, cfg.AI.Model, cfg.AI.MaxTokens)
	synth := ai.NewSynthesizer(client)

	// buildSender is also handed to the app so the sender can be rebuilt
	// with the settings from first-run setup.
	buildSender := func(c *model.AppConfig, password string) agent.Sender {
		if password == "" {
			password = credential.Resolve("SMTP_PASSWORD", credential.KeySMTPPassword)
		}

		transport := smtp.NewSMTPTransport(c.SMTP, password)

		var copier smtp.SentCopier
		if c.SentCopy.Enabled {
			imapPassword := credential.Resolve("IMAP_PASSWORD", credential.KeyIMAPPassword)
			if imapPassword == "" {
				imapPassword = password
			}
			copier = mailbox.NewSentCopier(c.SentCopy, imapPassword)
		}

		return smtp.NewSender(transport, c.SMTP.Sender, copier)
	}

	session := agent.NewSession(synth, buildSender(cfg, smtpPassword), st)

	needsSetup := !cfg.SMTP.Configured()

	// An interrupt during a blocking call must end the session cleanly;
	// cancelling this context makes an in-flight send report as
	// interrupted, never as success.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	program := tea.NewProgram(
		app.New(ctx, session, st, cfg, configPath, needsSetup, buildSender),
		tea.WithAltScreen(),
	)

	go func() {
		<-ctx.Done()
		log.Println("Shutdown signal received, quitting...")
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.Fatalf("Error running application: %v", err)
	}

	log.Println("Application stopped. Exiting.")
}
