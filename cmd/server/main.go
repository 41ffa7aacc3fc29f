package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-classroom-assign/classroom"
	"github.com/jrsteele09/go-classroom-assign/internal/config"
	"github.com/jrsteele09/go-classroom-assign/internal/observability"
	"github.com/jrsteele09/go-classroom-assign/server"
	"github.com/jrsteele09/go-classroom-assign/sessions"
	"github.com/jrsteele09/go-classroom-assign/signin"
	"github.com/jrsteele09/go-classroom-assign/signin/flowrepo"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	observability.SetupLogging(c.GetLogLevel(), config.IsDev(c))
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, c.GetAppName(), c.GetOtelEndpoint())
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Err(err).Msg("tracing shutdown")
		}
	}()

	handler, err := newServer(ctx, c)
	if err != nil {
		return err
	}
	handler.StartSweeper(ctx, c.GetSweepInterval())

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newServer(ctx context.Context, c config.Config) (*server.Server, error) {
	provider, err := signin.DiscoverProvider(ctx, c.GetIssuer(), c.GetClientID())
	if err != nil {
		return nil, err
	}

	coordinator, err := signin.NewCoordinator(provider, signin.Options{
		ClientID:       c.GetClientID(),
		ClientSecret:   c.GetClientSecret(),
		RedirectURL:    c.GetBaseURL() + c.GetRedirectPath(),
		IdentityScopes: c.GetIdentityScopes(),
		GrantScopes:    c.GetGrantScopes(),
		FlowTimeout:    c.GetAuthCodeTimeout(),
	}, flowrepo.NewInMemoryRepo())
	if err != nil {
		return nil, err
	}

	draft, err := classroom.NewDraft(
		c.GetAssignmentTitle(),
		c.GetAssignmentDescription(),
		c.GetAssignmentLinks(),
		c.GetAssignmentWorkType(),
		c.GetAssignmentState(),
	)
	if err != nil {
		return nil, fmt.Errorf("assignment config: %w", err)
	}

	return server.New(c, coordinator, sessions.NewInMemoryRepo(), draft)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
