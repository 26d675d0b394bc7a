package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-billing-console/internal/backendfake"
	"github.com/jrsteele09/go-billing-console/internal/config"
	"github.com/jrsteele09/go-billing-console/internal/logging"
	"github.com/rs/zerolog/log"
)

const contextPath = "/subscription-service/api"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running fake backend")
	}
	log.Info().Msg("Fake backend stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	logging.Setup(config.GetEnv("ENV", "DEV"), config.GetEnv("LOG_LEVEL", "info"), false)
	displayAppname("fake backend")

	be := backendfake.New(backendfake.WithSigningKey([]byte(config.GetEnv("FAKE_BACKEND_SIGNING_KEY", "backendfake-signing-key"))))
	if err := seed(be); err != nil {
		return err
	}

	if config.GetEnv("ENV", "DEV") == "DEV" {
		logRoutes(be.Routes())
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount(contextPath, be)

	server := &http.Server{Addr: config.GetEnv("FAKE_BACKEND_ADDR", ":8080"), Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(server) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// seed registers one account per role. Every password is "password".
func seed(be *backendfake.Backend) error {
	accounts := []backendfake.Account{
		{ID: 1, Username: "admin", Email: "admin@example.com", Mobile: "9000000001", Password: "password", Roles: []string{backendfake.RoleAdmin}},
		{ID: 2, Username: "agent", Email: "agent@example.com", Mobile: "9000000002", Password: "password", Roles: []string{backendfake.RoleAgent}},
		{ID: 3, Username: "user", Email: "user@example.com", Mobile: "9000000003", Password: "password", Roles: []string{backendfake.RoleUser}},
	}
	for _, a := range accounts {
		if _, err := be.AddUser(a); err != nil {
			return fmt.Errorf("seed %s: %w", a.Username, err)
		}
		log.Info().Str("username", a.Username).Strs("roles", a.Roles).Msg("seeded account")
	}
	return nil
}

func logRoutes(routes []string) {
	for _, route := range routes {
		method, path, _ := strings.Cut(route, " ")
		log.Debug().Msgf("[%-7s] %s%s", method, contextPath, path)
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Fake backend listening on %s%s", server.Addr, contextPath)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
