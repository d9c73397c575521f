// helpers.go builds stack handles from CLI flags and prints stack events.
package main

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/example/stackup/internal/cfn"
	"github.com/example/stackup/internal/config"
	"github.com/example/stackup/internal/logging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStack(cmd *cobra.Command, opts *config.Options, name string) (*cfn.Stack, error) {
	logger, err := logging.New(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	client, err := cfn.NewClient(cmd.Context(), opts.Region, opts.Profile)
	if err != nil {
		return nil, err
	}
	return cfn.New(client, name, cfn.Options{
		PollInterval: opts.PollInterval,
		Timeout:      opts.Timeout,
		OnEvent:      printEvent,
		Logger:       logger,
	})
}

// printEvent writes one stack event to stdout, colored by how well it went.
func printEvent(ev types.StackEvent) {
	line := cfn.FormatEvent(ev)
	if ts := aws.ToTime(ev.Timestamp); !ts.IsZero() {
		line = ts.Format("2006-01-02 15:04:05") + " " + line
	}
	fmt.Println(colorizeEvent(line, string(ev.ResourceStatus)))
}

func colorizeEvent(line, status string) string {
	if color.NoColor {
		return line
	}
	switch {
	case strings.HasSuffix(status, "_FAILED"):
		return color.New(color.FgRed).Sprint(line)
	case strings.HasSuffix(status, "_COMPLETE"):
		return color.New(color.FgGreen).Sprint(line)
	default:
		return line
	}
}

// parseKeyValues parses repeated KEY=VALUE flag values.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected KEY=VALUE, got %q", pair)
		}
		values[key] = value
	}
	return values, nil
}
