// version.go implements 'stackup version'.
package main

import (
	"fmt"

	"github.com/example/stackup/internal/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stackup version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("stackup " + buildinfo.String())
		},
	}
}
