package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PavelKondratiev/zos-connector-plugin/internal/config"
	"github.com/PavelKondratiev/zos-connector-plugin/internal/jes"
)

var (
	cfgFile     string
	profileName string
	verbose     bool
	cfg         *config.Config
	logger      *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "zjob",
	Short: "Submit and track z/OS batch jobs over FTP",
	Long: `zjob submits JCL to a mainframe job entry subsystem through the
FTP-to-JES gateway, waits for the job to finish, captures its output log and
turns the captured return code into a process exit code pipelines can gate on.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}

		if cmd.Name() == "setup" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if profileName != "" {
			cfg.DefaultProfile = profileName
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.zjobconfig)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (overrides default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initLogger() error {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.DisableCaller = true
	if verbose {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	l, err := c.Build()
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = l.Sugar()
	return nil
}

// zapListener feeds connector progress lines into the CLI logger.
type zapListener struct {
	s *zap.SugaredLogger
}

func (l zapListener) Info(text string)  { l.s.Info(text) }
func (l zapListener) Error(text string) { l.s.Error(text) }

func currentProfile() (*config.Profile, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	p, err := cfg.GetProfile(cfg.DefaultProfile)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile is incomplete: %w", err)
	}
	return p, nil
}

// openConnector builds a JES connector for the active profile. The caller
// owns Close.
func openConnector(opts ...jes.Option) (*config.Profile, *jes.Connector, error) {
	p, err := currentProfile()
	if err != nil {
		return nil, nil, err
	}

	all := []jes.Option{
		jes.WithListener(zapListener{logger}),
		jes.WithPollInterval(p.PollEvery()),
	}
	if p.InterfaceLevel1 {
		all = append(all, jes.WithInterfaceLevel1())
	}
	all = append(all, opts...)

	return p, jes.New(p.Host, p.Port, p.User, p.Password, all...), nil
}
