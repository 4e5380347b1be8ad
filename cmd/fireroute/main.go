package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qazfin/fireroute/engine"
	"github.com/qazfin/fireroute/engine/metrics"
	"github.com/qazfin/fireroute/engine/stats"
	"github.com/qazfin/fireroute/ingest"
	"github.com/qazfin/fireroute/internal/profile"
	"github.com/qazfin/fireroute/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "fireroute",
	Short: "Enriches customer support tickets and routes them to managers across regional offices.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Ignore error if the .env file does not exist.
		_ = godotenv.Load()
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := &profile.Profile{Version: version.String()}
		p.FromEnv()
		if cmd.Flags().Changed("mode") {
			p.Mode = viper.GetString("mode")
		}
		if cmd.Flags().Changed("data") {
			p.Data = viper.GetString("data")
		}
		if cmd.Flags().Changed("workers") {
			p.Workers = viper.GetInt("workers")
		}
		if err := p.Validate(); err != nil {
			return err
		}
		setupLogging(p)

		ticketsPath := viper.GetString("tickets")
		tickets, err := ingest.Tickets(ticketsPath)
		if err != nil {
			return err
		}
		managers, err := ingest.Managers(viper.GetString("managers"))
		if err != nil {
			return err
		}
		offices, err := ingest.Offices(viper.GetString("offices"))
		if err != nil {
			return err
		}
		slog.Info("corpus loaded",
			"tickets", len(tickets),
			"managers", len(managers),
			"offices", len(offices),
		)

		exporter := metrics.NewExporter(metrics.DefaultConfig())
		if addr := viper.GetString("metrics-addr"); addr != "" {
			go serveMetrics(addr, exporter)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pipe := engine.New(engine.NewConfigFromProfile(p), managers, offices, exporter)
		assignments, err := pipe.Run(ctx, tickets)
		if err != nil {
			return err
		}

		report := stats.Build(assignments, ticketsPath)
		if err := writeJSON(filepath.Join(p.Data, "assignments.json"), assignments); err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(p.Data, "analysis_report.json"), report); err != nil {
			return err
		}

		printSummary(cmd, report, p.Data)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(version.StringFull())
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", "out", "output directory for result files")
	rootCmd.PersistentFlags().Int("workers", 20, "enrichment concurrency")
	rootCmd.PersistentFlags().String("tickets", "tickets.json", "path to the tickets file")
	rootCmd.PersistentFlags().String("managers", "managers.json", "path to the managers file")
	rootCmd.PersistentFlags().String("offices", "offices.json", "path to the offices file")
	rootCmd.PersistentFlags().String("metrics-addr", "", "address to serve Prometheus metrics on (disabled when empty)")

	for _, name := range []string{"mode", "data", "workers", "tickets", "managers", "offices", "metrics-addr"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("fireroute")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	rootCmd.AddCommand(versionCmd)
}

func setupLogging(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if !p.IsDev() {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func serveMetrics(addr string, exporter *metrics.Exporter) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", exporter.Handler())
	slog.Info("metrics listener started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics listener failed", "error", err)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(cmd *cobra.Command, r stats.Report, dataDir string) {
	cmd.Println("\n=== ANALYSIS SUMMARY ===")
	cmd.Printf("Source:          %s\n", r.Source)
	cmd.Printf("Total tickets:   %d\n", r.Totals.Tickets)
	cmd.Printf("Escalations:     %d (%.2f%%)\n", r.Totals.Escalations, r.Totals.EscalationRatePct)
	cmd.Printf("Avg priority:    %.2f\n", r.Totals.AvgPriority)
	cmd.Printf("Managers active: %d\n", r.Managers.Fairness.ManagersWithTickets)
	cmd.Printf("Load fairness:   std=%.3f, gini=%.4f\n", r.Managers.Fairness.Std, r.Managers.Fairness.Gini)
	if r.Geo.AvgDistanceKM != nil {
		cmd.Printf("Avg dist (geo):  %.2f km\n", *r.Geo.AvgDistanceKM)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nReports saved to %s\n", dataDir)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
