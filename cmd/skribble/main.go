// Command skribble is a small CLI over the SDK, used for smoke-testing
// an account: checking service health, vending a token, and creating a
// signature request from a YAML template.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	skribble "github.com/skribble-sdk/skribble-go"
	"github.com/skribble-sdk/skribble-go/internal/observe"
)

type credentials struct {
	Username string `env:"SKRIBBLE_USERNAME, required"`
	APIKey   string `env:"SKRIBBLE_API_KEY, required"`
}

func main() {
	configureLogging()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func run() error {
	ctx := context.Background()

	if len(os.Args) < 2 {
		return fmt.Errorf("usage: skribble <health|token|create> [flags]")
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := skribble.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := observe.Configure(ctx, observe.Options{
			ServiceName:    "skribble-cli",
			MetricsEnabled: true,
		})
		if err != nil {
			return fmt.Errorf("telemetry bootstrap failed: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("telemetry shutdown failed")
			}
		}()
	}

	var creds credentials
	if err := envconfig.Process(ctx, &creds); err != nil {
		return fmt.Errorf("error reading credentials: %w", err)
	}

	client, err := skribble.New(ctx, creds.Username, creds.APIKey, skribble.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer client.Close()

	switch command {
	case "health":
		return runHealth(ctx, client)
	case "token":
		return runToken(ctx, client, args)
	case "create":
		return runCreate(ctx, client, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runHealth(ctx context.Context, client *skribble.Client) error {
	health, err := client.Monitoring().SystemHealth(ctx)
	if err != nil {
		return err
	}

	fmt.Println(health.Status)
	if !health.OK() {
		// an error return keeps the deferred client and telemetry
		// shutdown in run() on the exit path
		return fmt.Errorf("service reported status %q", health.Status)
	}
	return nil
}

func runToken(ctx context.Context, client *skribble.Client, args []string) error {
	flags := flag.NewFlagSet("token", flag.ExitOnError)
	refresh := flags.Bool("refresh", false, "force a fresh login, bypassing the cache")
	if err := flags.Parse(args); err != nil {
		return err
	}

	token, err := client.TokenManager().GetAccessToken(ctx, *refresh)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

// requestTemplate is the YAML shape accepted by "create".
type requestTemplate struct {
	Title      string `yaml:"title"`
	Message    string `yaml:"message"`
	Content    string `yaml:"content"`
	FileURL    string `yaml:"file_url"`
	DocumentID string `yaml:"document_id"`

	Legislation    string `yaml:"legislation"`
	SignatureLevel string `yaml:"signature_level"`

	Signatures []struct {
		AccountEmail string `yaml:"account_email"`
	} `yaml:"signatures"`

	Callbacks []struct {
		URL  string `yaml:"url"`
		Type string `yaml:"type"`
	} `yaml:"callbacks"`
}

func runCreate(ctx context.Context, client *skribble.Client, args []string) error {
	flags := flag.NewFlagSet("create", flag.ExitOnError)
	file := flags.String("f", "", "YAML signature request template")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("create requires -f <template.yaml>")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	var template requestTemplate
	if err := yaml.Unmarshal(raw, &template); err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	params := skribble.CreateSignatureRequestParams{
		Title:          template.Title,
		Message:        template.Message,
		Content:        template.Content,
		FileURL:        template.FileURL,
		DocumentID:     template.DocumentID,
		Legislation:    template.Legislation,
		SignatureLevel: template.SignatureLevel,
	}
	for _, signature := range template.Signatures {
		params.Signatures = append(params.Signatures, skribble.Signature{
			AccountEmail: signature.AccountEmail,
		})
	}
	for _, callback := range template.Callbacks {
		params.Callbacks = append(params.Callbacks, skribble.Callback{
			URL:  callback.URL,
			Type: callback.Type,
		})
	}

	created, err := client.SignatureRequests().Create(ctx, params)
	if err != nil {
		return err
	}

	log.Info().
		Str("id", created.ID).
		Str("status", created.StatusOverall).
		Msg("signature request created")
	fmt.Println(created.ID)

	return nil
}

func configureLogging() {
	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}
