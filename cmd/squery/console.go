package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"kvarenzis.github.io/squery/client"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "stream console and log lines until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial(client.WithSubscribeConsole(), client.WithSubscribeLogs())
			if err != nil {
				return err
			}
			defer c.Close()
			c.OnConsole(func(line string, log bool) {
				if log {
					fmt.Println("[log]", line)
				} else {
					fmt.Println(line)
				}
			})
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			<-sigs
			return nil
		},
	}
}
