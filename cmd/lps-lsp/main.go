// Command lps-lsp is a language server for LPS scripts. It speaks JSON-RPC
// over stdin and stdout.
package main

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	name    = "lps-lsp"
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:          name,
	Short:        "Language server for LPS scripts",
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logFile, _ := cmd.Flags().GetString("log-file")
		logLevel, _ := cmd.Flags().GetString("log-level")
		if err := setupLogging(logFile, logLevel); err != nil {
			return err
		}
		return serve(cmd.Context())
	},
}

func setupLogging(path, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	// stdout carries the protocol, so logs go to stderr or a file.
	out := os.Stderr
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out = f
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

func serve(ctx context.Context) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewHeaderStream(stdio{}))
	server := NewServer(name, version, conn)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	server.exit = cancel

	log.Info().Str("version", version).Msg("starting")
	conn.Go(ctx, protocol.Handlers(server.Handler()))
	select {
	case <-ctx.Done():
		conn.Close()
	case <-conn.Done():
	}
	if err := conn.Err(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("connection closed")
		return err
	}
	log.Info().Msg("stopped")
	return nil
}

// stdio adapts the process streams to net.Conn.
type stdio struct{}

func (stdio) Read(p []byte) (int, error) { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error { return os.Stdin.Close() }
func (stdio) LocalAddr() net.Addr { return stdioAddr{} }
func (stdio) RemoteAddr() net.Addr { return stdioAddr{} }
func (stdio) SetDeadline(time.Time) error { return nil }
func (stdio) SetReadDeadline(time.Time) error { return nil }
func (stdio) SetWriteDeadline(time.Time) error { return nil }

type stdioAddr struct{}

func (stdioAddr) Network() string { return "stdio" }
func (stdioAddr) String() string { return "stdio" }

func init() {
	rootCmd.Flags().String("log-file", "", "Write logs to this file")
	rootCmd.Flags().String("log-level", "info", "Log level")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
