package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gosuda.org/portal/sdk"
)

var rootCmd = &cobra.Command{
	Use:   "roomchat-server",
	Short: "Room-scoped chat relay (websocket rooms + typing indicators)",
	RunE:  runServer,
}

var (
	flagServerURLs []string
	flagPort       int
	flagName       string
)

// config holds the environment-driven defaults; flags override it.
type config struct {
	Port int `env:"PORT" envDefault:"3000"`
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&flagServerURLs, "server-url", strings.Split(os.Getenv("RELAY"), ","), "optional relayserver base URL(s) to publish the chat through; repeat or comma-separated (env RELAY)")
	flags.IntVar(&flagPort, "port", 0, "local HTTP port (0 to use PORT env, default 3000; negative to disable local serve)")
	flags.StringVar(&flagName, "name", "roomchat", "display name for the chat backend")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute server command")
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	port := cfg.Port
	if flagPort != 0 {
		port = flagPort
	}

	reg := NewRegistry()
	rt := NewRouter(reg)
	srv := NewHTTPServer(reg, rt)
	handler := srv.Handler(flagName)

	servers := make([]string, 0, len(flagServerURLs))
	for _, raw := range flagServerURLs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			servers = append(servers, trimmed)
		}
	}

	// Optional: publish the handler through a Portal relay
	var (
		client *sdk.RDClient
		ln     net.Listener
	)
	if len(servers) > 0 {
		c, err := sdk.NewClient(func(c *sdk.RDClientConfig) { c.BootstrapServers = servers })
		if err != nil {
			return fmt.Errorf("new relay client: %w", err)
		}
		client = c
		cred := sdk.NewCredential()
		ln, err = client.Listen(cred, flagName, []string{"http/1.1"})
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("relay listen: %w", err)
		}
		go func() {
			if err := http.Serve(ln, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
				log.Error().Err(err).Msg("[server] relay http error")
			}
		}()
	}

	var httpSrv *http.Server
	if port >= 0 {
		httpSrv = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler, ReadHeaderTimeout: 5 * time.Second, IdleTimeout: 60 * time.Second}
		log.Info().Msgf("[server] serving locally at http://127.0.0.1:%d", port)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn().Err(err).Msg("[server] local http stopped")
			}
		}()
	}

	// Unified shutdown watcher
	go func() {
		<-ctx.Done()
		if ln != nil {
			_ = ln.Close()
		}
		if client != nil {
			_ = client.Close()
		}
		if httpSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(sctx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("[server] http server shutdown error")
			}
		}
	}()

	<-ctx.Done()
	srv.closeAll()
	srv.wait()
	log.Info().Msg("[server] shutdown complete")
	return nil
}
