//go:build windows

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

const (
	serviceName        = "shutdown-on-lan"
	serviceDisplayName = "Shutdown on LAN"
	serviceDescription = "Shuts the machine down when the configured secret arrives over TCP."
	serviceLogFileName = "service.log"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "install",
		Short:         "Create the configuration and register the Windows service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInstall,
	}
}

func newUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "uninstall",
		Short:         "Stop and remove the Windows service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runUninstall,
	}
}

// runDefault runs under the service control manager when launched by it
// and falls back to standalone mode otherwise.
func runDefault(cmd *cobra.Command, args []string) error {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return fmt.Errorf("detect service context: %w", err)
	}
	if !isService {
		fmt.Fprintln(cmd.OutOrStdout(), "Running in standalone mode")
		return runStandalone(cmd)
	}
	return runService(cmd)
}

func runService(cmd *cobra.Command) error {
	logPath, _ := cmd.Flags().GetString("log-file")
	if logPath == "" {
		if paths, err := resolvePaths(); err == nil {
			logPath = filepath.Join(paths.Journal, serviceLogFileName)
		}
	}
	closeLog, err := setupLogging(os.Stdout, logPath)
	if err != nil {
		log.Printf("[Service] WARNING: %v", err)
	}
	defer closeLog()

	handler := &serviceHandler{opts: runOptionsFromFlags(cmd)}
	if err := svc.Run(serviceName, handler); err != nil {
		return fmt.Errorf("run service: %w", err)
	}
	return handler.err
}

// serviceHandler bridges service control requests to the listener.
type serviceHandler struct {
	opts runOptions
	err  error
}

func (h *serviceHandler) Execute(args []string, requests <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	const accepted = svc.AcceptStop | svc.AcceptShutdown

	status <- svc.Status{State: svc.StartPending}

	listener, cleanup, err := prepareListener(h.opts)
	if err != nil {
		log.Printf("[Service] Failed to prepare listener: %v", err)
		h.err = err
		return true, 1
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := listener.Start(ctx); err != nil {
		log.Printf("[Service] Failed to start listener: %v", err)
		h.err = err
		return true, 2
	}

	status <- svc.Status{State: svc.Running, Accepts: accepted}
	log.Printf("[Service] Running as %s", serviceName)

	for req := range requests {
		switch req.Cmd {
		case svc.Interrogate:
			status <- req.CurrentStatus
		case svc.Stop, svc.Shutdown:
			status <- svc.Status{State: svc.StopPending}
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := listener.Shutdown(shutdownCtx); err != nil {
				log.Printf("[Service] Listener shutdown: %v", err)
			}
			shutdownCancel()
			log.Println("[Service] Stopped")
			return false, 0
		default:
			log.Printf("[Service] Unexpected control request #%d", req.Cmd)
		}
	}
	return false, 0
}

func runInstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if _, _, err := loadConfiguration(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Configuration is present.")

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to service manager: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(serviceName)
	if err == nil {
		s.Close()
		fmt.Fprintf(out, "Service %s is already installed.\n", serviceName)
		return nil
	}

	s, err = m.CreateService(serviceName, exe, mgr.Config{
		DisplayName: serviceDisplayName,
		Description: serviceDescription,
		StartType:   mgr.StartAutomatic,
	})
	if err != nil {
		return fmt.Errorf("create service %s: %w", serviceName, err)
	}
	defer s.Close()

	if err := s.Start(); err != nil {
		return fmt.Errorf("start service %s: %w", serviceName, err)
	}
	fmt.Fprintf(out, "Service %s installed and started.\n", serviceName)
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to service manager: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(serviceName)
	if err != nil {
		if errors.Is(err, windows.ERROR_SERVICE_DOES_NOT_EXIST) {
			fmt.Fprintf(out, "Service %s is not installed.\n", serviceName)
			return nil
		}
		return fmt.Errorf("open service %s: %w", serviceName, err)
	}
	defer s.Close()

	if st, err := s.Query(); err == nil && st.State != svc.Stopped {
		if _, err := s.Control(svc.Stop); err != nil {
			log.Printf("[Service] WARNING: failed to stop %s: %v", serviceName, err)
		}
	}
	if err := s.Delete(); err != nil {
		return fmt.Errorf("delete service %s: %w", serviceName, err)
	}
	fmt.Fprintf(out, "Service %s removed.\n", serviceName)
	return nil
}
