package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// configView is the structured form printed by "get". The secret is never shown.
type configView struct {
	Port        uint16   `json:"port" yaml:"port"`
	IPAddresses []string `json:"ip_addresses" yaml:"ip_addresses"`
	Location    string   `json:"location" yaml:"location"`
}

func newGetCommand() *cobra.Command {
	getCmd := &cobra.Command{
		Use:           "get",
		Short:         "Print the current configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGet,
	}
	getCmd.Flags().Bool("port", false, "Print the port number this tool listens on")
	getCmd.Flags().Bool("ip-addresses", false, "Print the IP address(es) expected to send the shutdown command")
	addOutputFlag(getCmd)
	return getCmd
}

func newSetCommand() *cobra.Command {
	setCmd := &cobra.Command{
		Use:           "set",
		Short:         "Update the stored configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSet,
	}
	setCmd.Flags().Uint16("port", 0, "Port to listen on")
	setCmd.Flags().String("ip-address", "", "Comma-separated IP addresses expected to send the command")
	setCmd.Flags().String("secret", "", "Shared secret clients must send")
	setCmd.Flags().Bool("secret-stdin", false, "Read the secret from standard input (without echo on a terminal)")
	setCmd.MarkFlagsMutuallyExclusive("secret", "secret-stdin")
	return setCmd
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "reset",
		Short:         "Delete the stored configuration and restore the defaults",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runReset,
	}
}

// loadConfiguration opens the platform store and makes sure a valid
// configuration exists in it.
func loadConfiguration() (config.Store, config.Configuration, error) {
	store, err := openStore()
	if err != nil {
		return nil, config.Configuration{}, fmt.Errorf("unable to open the configuration store: %w", err)
	}
	cfg, err := config.Validate(store)
	if err != nil {
		return nil, config.Configuration{}, fmt.Errorf("unable to validate the configuration: %w", err)
	}
	return store, cfg, nil
}

func runGet(cmd *cobra.Command, args []string) error {
	defer setupCommandLogging(cmd)()

	out, err := newOutputFormatter(cmd)
	if err != nil {
		return err
	}

	store, cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	showPort, _ := flags.GetBool("port")
	showAddresses, _ := flags.GetBool("ip-addresses")
	if !showPort && !showAddresses {
		showPort, showAddresses = true, true
	}

	addresses := make([]string, len(cfg.Addresses))
	for i, addr := range cfg.Addresses {
		addresses[i] = addr.String()
	}

	if out.Structured() {
		return out.Print(configView{Port: cfg.Port, IPAddresses: addresses, Location: store.Location()})
	}

	if showPort {
		out.Printf("Current Port: %d\n", cfg.Port)
	}
	if showAddresses {
		out.Printf("Listening IP Addresses: [%s]\n", strings.Join(addresses, ", "))
	}
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	defer setupCommandLogging(cmd)()

	flags := cmd.Flags()
	if !flags.Changed("port") && !flags.Changed("ip-address") && !flags.Changed("secret") && !flags.Changed("secret-stdin") {
		return usageError{msg: "you must specify an option to set. Use --help to list options"}
	}

	store, cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if flags.Changed("port") {
		port, _ := flags.GetUint16("port")
		fmt.Fprintf(out, "Set port %d\n", port)
		cfg.SetPort(port)
	}

	if flags.Changed("ip-address") {
		list, _ := flags.GetString("ip-address")
		cfg.SetAddresses(list)
		fmt.Fprintf(out, "Set IP Addresses: %q\n", config.FormatAddresses(cfg.Addresses))
		if list != "" && len(cfg.Addresses) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: none of the given addresses could be parsed")
		}
	}

	secretFromStdin, _ := flags.GetBool("secret-stdin")
	switch {
	case secretFromStdin:
		secret, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		cfg.SetSecret(secret)
		fmt.Fprintln(out, "Set Secret.")
	case flags.Changed("secret"):
		secret, _ := flags.GetString("secret")
		cfg.SetSecret(secret)
		fmt.Fprintln(out, "Set Secret.")
	}

	log.Printf("[Config] Saving configuration to %s", store.Location())
	if err := store.Save(cfg); err != nil {
		return fmt.Errorf("unable to save the configuration: %w", err)
	}

	fmt.Fprintln(out, "Configuration Changes Saved.")
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	defer setupCommandLogging(cmd)()

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("unable to open the configuration store: %w", err)
	}
	if _, err := config.Reset(store); err != nil {
		return fmt.Errorf("unable to reset the configuration: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration at %s reset to defaults.\n", store.Location())
	return nil
}

// readSecret reads one line from in. When in is a terminal the input is
// not echoed.
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Secret: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
