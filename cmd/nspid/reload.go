package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/nspid/internal/acl"
)

// ErrNoConfigFile is returned by a reload when the server was started
// without --config.
var ErrNoConfigFile = errors.New("server was started without a configuration file")

// ReloadACL re-reads the acl section of the configuration file and swaps
// it into the running evaluator. The previous rules stay in force when
// the file cannot be loaded.
func (s *NSPIServer) ReloadACL() (int, error) {
	if s.configFile == "" {
		return 0, ErrNoConfigFile
	}
	cfg, err := loadConfig(s.configFile)
	if err != nil {
		return 0, err
	}
	aclConfig, err := acl.FromConfig(cfg.ACL)
	if err != nil {
		return 0, fmt.Errorf("acl: %w", err)
	}
	s.acl.SetConfig(aclConfig)
	return len(aclConfig.Rules), nil
}

// watchReload reloads the ACL each time a signal arrives on hup.
func (s *NSPIServer) watchReload(ctx context.Context, hup <-chan os.Signal) {
	logger := s.logger.WithSource("acl")
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			rules, err := s.ReloadACL()
			if err != nil {
				logger.Error("ACL reload failed, keeping previous rules", "error", err)
				continue
			}
			logger.Info("ACL reloaded", "config", s.configFile, "rules", rules)
		}
	}
}

func newReloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Reload part of a running server's configuration",
	}
	cmd.AddCommand(newReloadACLCmd())
	return cmd
}

func newReloadACLCmd() *cobra.Command {
	var pidFile string

	cmd := &cobra.Command{
		Use:   "acl",
		Short: "Reload the modification policy without a restart",
		Long: `Send SIGHUP to the server named by the pid file. The server re-reads
the acl section of its configuration file; check the server log for the
outcome. NSPID_PID_FILE overrides --pid-file.`,
		Example: `  nspid reload acl --pid-file /run/nspid.pid`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env := os.Getenv("NSPID_PID_FILE"); env != "" {
				pidFile = env
			}
			pid, err := readPIDFile(pidFile)
			if err != nil {
				return err
			}
			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("find process %d: %w", pid, err)
			}
			if err := process.Signal(syscall.SIGHUP); err != nil {
				return fmt.Errorf("send SIGHUP to process %d: %w", pid, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent SIGHUP to nspid (PID %d)\n", pid)
			return nil
		},
	}

	cmd.Flags().StringVar(&pidFile, "pid-file", "/run/nspid.pid", "Path to the server's PID file")
	return cmd
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("pid file not found: %s (is the server running?)", path)
		}
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s: %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}
