package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PavelKondratiev/zos-connector-plugin/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage zjob configuration",
}

var configSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create or update configuration",
	Long:  `Interactive setup to create or update the zjob configuration file.`,
	RunE:  runConfigSetup,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetupCmd)
}

func runConfigSetup(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("zjob Configuration Setup")
	fmt.Println("========================")
	fmt.Println()

	profile := prompt(reader, "Profile name", "default")

	host := prompt(reader, "FTP-to-JES gateway host", "")
	if host == "" {
		return fmt.Errorf("host is required")
	}

	portStr := prompt(reader, "Port", "21")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port: %s", portStr)
	}

	user := prompt(reader, "Username", "")
	if user == "" {
		return fmt.Errorf("username is required")
	}

	password := promptPassword(reader, "Password")
	if password == "" {
		return fmt.Errorf("password is required")
	}

	level1 := prompt(reader, "Gateway runs JESINTERFACELEVEL=1 (no return codes)? (y/n)", "n")

	interval := prompt(reader, "Poll interval while waiting for jobs", "10s")
	if _, err := time.ParseDuration(interval); err != nil {
		return fmt.Errorf("invalid poll interval: %s", interval)
	}

	p := &config.Profile{
		Host:            host,
		Port:            port,
		User:            user,
		Password:        password,
		InterfaceLevel1: strings.ToLower(level1) == "y",
		PollInterval:    interval,
	}

	// Load existing config or create new
	cfg, err := config.Load(cfgFile)
	if err != nil {
		cfg = &config.Config{
			Profiles:       make(map[string]*config.Profile),
			DefaultProfile: profile,
		}
	}

	cfg.Profiles[profile] = p

	if len(cfg.Profiles) > 1 {
		setDefault := prompt(reader, fmt.Sprintf("Set '%s' as default profile? (y/n)", profile), "y")
		if strings.ToLower(setDefault) == "y" {
			cfg.DefaultProfile = profile
		}
	} else {
		cfg.DefaultProfile = profile
	}

	if err := cfg.Save(cfgFile); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Printf("Config file: ~/%s\n", config.DefaultConfigFile)
	fmt.Printf("Default profile: %s\n", cfg.DefaultProfile)

	return nil
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

// promptPassword hides the input when stdin is a terminal; piped input is
// read as-is.
func promptPassword(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(pw))
		}
	}

	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
