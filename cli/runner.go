package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jessevdk/go-flags"
	"github.com/viant/omnibar"
	"github.com/viant/omnibar/auth"
	"github.com/viant/omnibar/internal/logging"
	"github.com/viant/omnibar/session"
)

// Run parses args and executes the selected command.
func Run(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return run(ctx, args, os.Stdout)
}

func run(ctx context.Context, args []string, out io.Writer) error {
	options := &Options{}
	parser := flags.NewParser(options, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}
	level, err := logging.ParseLevel(options.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.InitForCLI(level, os.Stderr, options.JSONLog)

	config := omnibar.DefaultConfig()
	if options.Config != "" {
		if config, err = omnibar.LoadConfig(ctx, options.Config); err != nil {
			return err
		}
	}
	if options.Mock {
		config.Mock = true
	}
	host, err := omnibar.New(ctx, omnibar.WithConfig(config), omnibar.WithLogger(logger))
	if err != nil {
		return err
	}
	defer host.Destroy()

	switch parser.Active.Name {
	case "token":
		return runToken(ctx, host, &options.Token, out)
	case "watch":
		return runWatch(ctx, host, &options.Watch, out, logger)
	case "settings":
		settings, err := host.Settings.Get(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, settings)
	}
	return fmt.Errorf("unsupported command: %v", parser.Active.Name)
}

func runToken(ctx context.Context, host *omnibar.Host, cmd *TokenCommand, out io.Writer) error {
	token, err := host.GetToken(ctx, &auth.TokenArgs{
		ForceNewToken:   cmd.Force,
		DisableRedirect: true,
		EnvironmentID:   cmd.EnvironmentID,
		PermissionScope: cmd.PermissionScope,
		LegalEntityID:   cmd.LegalEntityID,
	})
	if err != nil {
		return err
	}
	if !cmd.Claims {
		_, err = fmt.Fprintln(out, token)
		return err
	}
	claims, err := auth.Claims(token)
	if err != nil {
		return err
	}
	return writeJSON(out, claims)
}

func runWatch(ctx context.Context, host *omnibar.Host, cmd *WatchCommand, out io.Writer, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cmd.Duration)
	defer cancel()
	if err := host.StartTracking(ctx, session.Options{
		AllowAnonymous: cmd.AllowAnonymous,
		RefreshUser: func() {
			logger.Info("session changed", "state", host.Session.State())
		},
	}); err != nil {
		return err
	}
	<-ctx.Done()
	state := host.Session.State()
	host.StopTracking()
	return writeJSON(out, state)
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
