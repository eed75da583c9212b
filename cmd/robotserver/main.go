// Command robotserver runs the robot navigation protocol server: it accepts
// TCP connections, authenticates clients via a challenge/response handshake,
// and drives a grid search over successive position reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/robotserver/internal/config"
	"github.com/example/robotserver/internal/obslog"
	"github.com/example/robotserver/internal/session"
	"github.com/example/robotserver/internal/transport"
)

var (
	cfgFile        string
	address        string
	serverKey      uint16
	clientKey      uint16
	readTimeoutMS  int
	chargeTimeout  int
	acceptTimeout  int
	maxConnections int
	logLevelFlag   string
	logFile        string
)

var rootCmd = &cobra.Command{
	Use:     "robotserver",
	Short:   "TCP server for the robot navigation protocol",
	Version: "1.0.0",
	RunE:    run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to a YAML config file (optional)")
	flags.StringVarP(&address, "addr", "a", "", "Address to listen on, overrides config file")
	flags.Uint16Var(&serverKey, "server-key", 0, "Server-side additive key (mod 2^16), overrides config file")
	flags.Uint16Var(&clientKey, "client-key", 0, "Client-side additive key (mod 2^16), overrides config file")
	flags.IntVar(&readTimeoutMS, "read-timeout-ms", 0, "Normal read timeout in milliseconds, overrides config file")
	flags.IntVar(&chargeTimeout, "charging-timeout-ms", 0, "Charging read timeout in milliseconds, overrides config file")
	flags.IntVar(&acceptTimeout, "accept-timeout-ms", 0, "Accept-idle shutdown timeout in milliseconds, overrides config file")
	flags.IntVar(&maxConnections, "max-connections", 0, "Maximum concurrent connections, 0 means unlimited")
	flags.StringVar(&logLevelFlag, "log-level", "", "Log level: info, debug1, debug2, debug3")
	flags.StringVar(&logFile, "log-file", "", "Log file path, empty logs to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(config.Default(), cfgFile)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	applyFlagOverrides(cmd, &cfg)

	logger, cleanup, err := obslog.New(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer cleanup()

	logLevel := transport.ParseLogLevel(cfg.LogLevel)

	listener := transport.NewListener(cfg.Address, transport.Config{
		MaxConnections:    cfg.MaxConnections,
		AcceptIdleTimeout: cfg.AcceptTimeout(),
		GracefulTimeout:   5 * time.Second,
		Logger:            logger,
		LogLevel:          logLevel,
	})

	sessionCfg := session.Config{
		ServerKey:       cfg.ServerKey,
		ClientKey:       cfg.ClientKey,
		ReadTimeout:     cfg.ReadTimeout(),
		ChargingTimeout: cfg.ChargingTimeout(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done, err := listener.Start(ctx, session.Handler(sessionCfg, logLevel))
	if err != nil {
		return fmt.Errorf("starting listener: %w", err)
	}

	logger.Info("robotserver listening on %s", cfg.Address)

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case <-done:
		logger.Info("listener stopped on its own (accept-idle timeout)")
		return nil
	}

	if err := listener.Stop(); err != nil {
		return fmt.Errorf("stopping listener: %w", err)
	}
	<-done

	logger.Info("robotserver stopped, %d connections still active at exit", listener.GetConnectionCount())
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Address = address
	}
	if flags.Changed("server-key") {
		cfg.ServerKey = serverKey
	}
	if flags.Changed("client-key") {
		cfg.ClientKey = clientKey
	}
	if flags.Changed("read-timeout-ms") {
		cfg.ReadTimeoutMS = readTimeoutMS
	}
	if flags.Changed("charging-timeout-ms") {
		cfg.ChargingTimeoutMS = chargeTimeout
	}
	if flags.Changed("accept-timeout-ms") {
		cfg.AcceptTimeoutMS = acceptTimeout
	}
	if flags.Changed("max-connections") {
		cfg.MaxConnections = maxConnections
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
