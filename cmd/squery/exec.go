package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"kvarenzis.github.io/squery/client"
)

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command>",
		Short: "run one remote admin command and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if !strings.HasPrefix(text, client.CommandPrefix) {
				text = client.CommandPrefix + text
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.SendCommand(cmd.Context(), text)
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("command rejected: %s", resp.Content)
			}
			fmt.Println(resp.Content)
			return nil
		},
	}
}
