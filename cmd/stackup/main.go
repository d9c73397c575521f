// main.go bootstraps stackup: it builds the root Cobra command, wires viper
// config, and executes with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/example/stackup/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := config.NewOptions()
	cmd := &cobra.Command{
		Use:           "stackup",
		Short:         "Manage the lifecycle of CloudFormation stacks",
		Long:          "stackup creates, updates, diffs, and deletes CloudFormation stacks, streaming stack events while operations run.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			if opts.NoColor {
				color.NoColor = true
			}
			return nil
		},
	}
	opts.BindFlags(cmd.PersistentFlags())

	upCmd := newUpCommand(opts)
	downCmd := newDownCommand(opts)
	cancelCmd := newCancelUpdateCommand(opts)
	waitCmd := newWaitCommand(opts)
	statusCmd := newStatusCommand(opts)
	diffCmd := newDiffCommand(opts)
	eventsCmd := newEventsCommand(opts)
	inspectCmd := newInspectCommand(opts)
	cmd.AddCommand(
		upCmd,
		downCmd,
		cancelCmd,
		waitCmd,
		statusCmd,
		diffCmd,
		eventsCmd,
		inspectCmd,
		newTemplateCommand(opts),
		newParametersCommand(opts),
		newTagsCommand(opts),
		newOutputsCommand(opts),
		newResourcesCommand(opts),
		newVersionCommand(),
	)
	cmd.Example = `  # Create or update a stack from a template
  stackup up my-stack --template stack.yml --parameters params.yml

  # Preview an update before applying it
  stackup up my-stack --template stack.yml --review

  # Compare the live stack against local files
  stackup diff my-stack --template stack.yml

  # Tear it down
  stackup down my-stack`
	bindViper(cmd, upCmd, downCmd, cancelCmd, waitCmd, statusCmd, diffCmd, eventsCmd, inspectCmd)
	return cmd
}

func bindViper(commands ...*cobra.Command) {
	if len(commands) == 0 {
		return
	}
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("STACKUP")
	v.AutomaticEnv()
	configFile := os.Getenv("STACKUP_CONFIG")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("stackup")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	cobra.OnInitialize(func() {
		for _, cmd := range commands {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				cobra.CheckErr(err)
			}
			if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
				cobra.CheckErr(err)
			}
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if configFile != "" || !errors.As(err, &notFound) {
				cobra.CheckErr(err)
			}
		}
		for _, cmd := range commands {
			for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Changed || !v.IsSet(f.Name) {
						return
					}
					if val := fmt.Sprintf("%v", v.Get(f.Name)); val != "" {
						_ = f.Value.Set(val)
					}
				})
			}
		}
	})
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		message = fmt.Sprintf("%s\nHint: the remote operation is still running; raise --timeout or rerun 'stackup wait'.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
