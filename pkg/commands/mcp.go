package commands

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/dynlink/pkg/mcp"
)

func addMCP(topLevel *cobra.Command) {
	r := mcp.Runner{Name: "dynlink"}
	var (
		transport string
		host      string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve link building over the Model Context Protocol.",
		Example: `
dynlink mcp
dynlink mcp --transport stdio
dynlink mcp --http-port 0 --http-tls-cert cert.pem --http-tls-key key.pem
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r.Transport = mcp.Transport(strings.ToLower(strings.TrimSpace(transport)))
			if r.Transport != mcp.TransportHTTP && r.Transport != mcp.TransportStdio {
				return fmt.Errorf("unsupported transport %q, want http or stdio", transport)
			}
			if port < 0 || port > 65535 {
				return fmt.Errorf("invalid http-port %d", port)
			}
			cmd.SilenceUsage = true

			// stdout is the protocol stream on stdio.
			rt, err := newRuntime(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			r.App = rt.svc
			r.Domain = rt.cfg.Domain
			r.Version = Version
			r.Addr = net.JoinHostPort(host, strconv.Itoa(port))
			if !strings.HasPrefix(r.Path, "/") {
				r.Path = "/" + r.Path
			}
			r.Listening = func(addr net.Addr, tls bool) {
				scheme := "http"
				if tls {
					scheme = "https"
				}
				rt.log.Info("mcp listening", "url", scheme+"://"+addr.String()+r.Path)
			}
			return r.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "Transport: http or stdio.")
	cmd.Flags().StringVar(&host, "http-host", "127.0.0.1", "Interface to listen on.")
	cmd.Flags().IntVar(&port, "http-port", 8080, "Port to listen on, 0 picks one.")
	cmd.Flags().StringVar(&r.Path, "http-path", "/mcp", "Endpoint path.")
	cmd.Flags().StringVar(&r.CertFile, "http-tls-cert", "", "TLS certificate file.")
	cmd.Flags().StringVar(&r.KeyFile, "http-tls-key", "", "TLS key file.")

	topLevel.AddCommand(cmd)
}
