package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/dynlink/pkg/app"
)

// Transport is how the server is reached.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

const (
	defaultAddr = "127.0.0.1:8080"
	defaultPath = "/mcp"
)

// Runner serves the link tools over one transport.
type Runner struct {
	App     *app.Service
	Domain  string
	Name    string
	Version string

	Transport Transport

	// HTTP only.
	Addr     string
	Path     string
	CertFile string
	KeyFile  string
	// Listening is called with the bound address before serving.
	Listening func(addr net.Addr, tls bool)
}

// NewServer registers every tool and resource for svc.
func NewServer(svc *Service, name, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		name+" MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Build and shorten dynamic links, list accepted parameters and browse previously generated links."),
		server.WithRecovery(),
	)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// Do serves until ctx is done (HTTP) or stdin closes (stdio).
func (r Runner) Do(ctx context.Context) error {
	if r.App == nil {
		return errors.New("mcp: runner requires a service")
	}
	srv := NewServer(&Service{App: r.App, Domain: r.Domain}, orDefault(r.Name, "dynlink"), orDefault(r.Version, "dev"))

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	}
	return fmt.Errorf("mcp: unknown transport %q", r.Transport)
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	useTLS := r.CertFile != "" || r.KeyFile != ""
	if useTLS && (r.CertFile == "" || r.KeyFile == "") {
		return errors.New("mcp: tls needs both a certificate and a key")
	}

	mux := http.NewServeMux()
	mux.Handle(orDefault(r.Path, defaultPath), server.NewStreamableHTTPServer(srv))
	hs := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", orDefault(r.Addr, defaultAddr))
	if err != nil {
		return fmt.Errorf("mcp: listen: %w", err)
	}
	if r.Listening != nil {
		r.Listening(ln.Addr(), useTLS)
	}

	stop := context.AfterFunc(ctx, func() {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdown)
	})
	defer stop()

	if useTLS {
		err = hs.ServeTLS(ln, r.CertFile, r.KeyFile)
	} else {
		err = hs.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
