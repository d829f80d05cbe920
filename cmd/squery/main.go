// Command squery is a small operator CLI over the query client: run one
// admin command, or tail the server console.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"kvarenzis.github.io/squery/client"
	"kvarenzis.github.io/squery/stats"
	"kvarenzis.github.io/squery/xlog"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "squery",
		Short:         "query protocol remote admin client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "squery.yaml", "path to the config file")
	root.AddCommand(newExecCmd(), newConsoleCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "squery:", err)
		os.Exit(1)
	}
}

// dial loads the config, wires logging and metrics, and connects.
func dial(extra ...client.Option) (client.Client, error) {
	cfg, err := readConfig(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.LogFile != "" {
		xlog.SetDefault(xlog.NewFile(cfg.Level(), cfg.LogFile))
	} else {
		xlog.SetDefault(xlog.NewText(cfg.Level()))
	}
	opts := cfg.options()
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, client.WithStats(stats.NewPrometheus(reg)))
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				xlog.Error("metrics listener failed", xlog.Err(err))
			}
		}()
	}
	opts = append(opts, extra...)
	return client.Dial(cfg.Host, cfg.Port, cfg.Password, opts...)
}
