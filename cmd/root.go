package cmd

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Execute runs the root command against the process arguments
func Execute() error {
	return newRootCmd(os.Stdout).Execute()
}

// newRootCmd builds the root command, printing results to out
func newRootCmd(out io.Writer) *cobra.Command {
	flagged := defaultConfig()
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "spring [flags] <target>",
		Short: "spring is a simple ping",
		Long: "spring sends hand built ICMP echo requests to an IPv4 host over a raw socket\n" +
			"and prints every reply. It needs the privilege to open raw sockets.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, configPath, flagged, args)
			if err != nil {
				return err
			}
			if verbose && !cmd.Flags().Changed("log-level") {
				cfg.LogLevel = log.DebugLevel.String()
			}

			settings, err := cfg.settings()
			if err != nil {
				return err
			}

			r, err := newRunner(settings, out)
			if err != nil {
				return err
			}

			r.Start()
			return r.Wait()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML file providing default settings")
	flags.IntVarP(&flagged.Size, "size", "s", flagged.Size, "number of data bytes sent")
	flags.IntVarP(&flagged.Count, "count", "c", flagged.Count, "last sequence number sent, count+1 requests are sent")
	flags.IntVarP(&flagged.TTL, "ttl", "t", flagged.TTL, "time-to-live")
	flags.IntVarP(&flagged.Timeout, "timeout", "W", flagged.Timeout, "seconds to wait for each reply, 0 waits forever")
	flags.BoolVar(&flagged.StrictSequence, "strict-seq", flagged.StrictSequence, "abort when a reply does not match the last request")
	flags.StringVar(&flagged.LogLevel, "log-level", flagged.LogLevel, "logging level (trace, debug, info, warn, error)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging, same as --log-level debug")

	return cmd
}

// resolveConfig starts from the config file, when there is one, and overrides it with
// the flags set on the command line and the target argument.
func resolveConfig(cmd *cobra.Command, configPath string, flagged *config, args []string) (*config, error) {
	cfg := defaultConfig()
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Size = flagged.Size
	}
	if flags.Changed("count") {
		cfg.Count = flagged.Count
	}
	if flags.Changed("ttl") {
		cfg.TTL = flagged.TTL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagged.Timeout
	}
	if flags.Changed("strict-seq") {
		cfg.StrictSequence = flagged.StrictSequence
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagged.LogLevel
	}

	if len(args) == 1 {
		cfg.Target = args[0]
	}

	return cfg, nil
}
