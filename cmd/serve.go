package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fotogo/gallery-core/internal/config"
	"github.com/fotogo/gallery-core/internal/web"
	"github.com/fotogo/gallery-core/internal/web/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Gallery Core web server.
The server exposes the editor API under /api/v1 and the public visitor
face search under /public.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// loadVerifier reads WEB_API_TOKENS ("token:user:role,...") into a
// static token table.
func loadVerifier() (middleware.Verifier, error) {
	raw := os.Getenv("WEB_API_TOKENS")
	if raw == "" {
		return nil, fmt.Errorf("WEB_API_TOKENS environment variable is required (format: token:user:role,...)")
	}
	tokens := make(map[string]middleware.Identity)
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid WEB_API_TOKENS entry %q", entry)
		}
		id := middleware.Identity{Username: parts[1], Role: "editor"}
		if len(parts) == 3 {
			id.Role = parts[2]
		}
		tokens[parts[0]] = id
	}
	return &middleware.StaticVerifier{Tokens: tokens}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	verifier, err := loadVerifier()
	if err != nil {
		return err
	}

	svc, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	if cfg.Database.URL != "" {
		fmt.Println("Face vector cache: PostgreSQL")
	} else {
		fmt.Println("Face vector cache: in-memory")
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, web.Deps{
		Gallery:     svc.gallery,
		Presets:     svc.presets,
		Crops:       svc.crops,
		Scorer:      svc.scorer,
		Searcher:    svc.searcher(),
		Watermarker: svc.watermarker,
		Verifier:    verifier,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		fmt.Printf("Received signal %s, shutting down...\n", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
