package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/EZoni/impactx/internal/config"
	"github.com/EZoni/impactx/internal/engine"
	"github.com/EZoni/impactx/internal/export"
	"github.com/EZoni/impactx/internal/lattice"
	"github.com/EZoni/impactx/internal/tui"
)

var (
	configFile string
	preset     string
	outPath    string
)

// main registers the impactx CLI: configure a beam-dynamics run, validate
// it, export it as a driver script, or assemble it interactively. With no
// subcommand it opens the dashboard.
func main() {
	rootCmd := &cobra.Command{
		Use:   "impactx",
		Short: "beam-dynamics run configuration and script export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return tui.Run(cfg, exportPath())
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "render the config as a runnable driver script",
		RunE:  exportScript,
	}
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "", "write script to file instead of stdout")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "drive the engine run lifecycle for the config",
		RunE:  runLifecycle,
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check the config and list every problem",
		RunE:  validateConfig,
	}

	latticeCmd := &cobra.Command{
		Use:   "lattice",
		Short: "show the beamline layout and focusing profile",
		RunE:  showLattice,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "assemble a config interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return tui.Run(cfg, exportPath())
		},
	}
	dashboardCmd.Flags().StringVarP(&outPath, "output", "o", "", "export target path")

	rootCmd.AddCommand(exportCmd, runCmd, validateCmd, latticeCmd, presetsCmd, dashboardCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exportPath() string {
	if outPath != "" {
		return outPath
	}
	return "impactx_run.py"
}

func loadConfig() (*config.Config, error) {
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return cfg, nil
	}
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.DefaultConfig(), nil
}

func exportScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Err(); err != nil {
		return err
	}

	script, err := export.Script(cfg)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(script), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	fmt.Print(script)
	return nil
}

func runLifecycle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec := &engine.Recorder{}
	if err := engine.Run(ctx, cfg, rec); err != nil {
		return err
	}

	fmt.Printf("run complete: %s\n\n", cfg.Summary())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tCALL\tDETAIL")
	for i, call := range rec.Calls {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, call.Op, call.Detail)
	}
	return w.Flush()
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	errs := cfg.Validate()
	if len(errs) == 0 {
		fmt.Println("config ok")
		return nil
	}
	for _, err := range errs {
		fmt.Printf("  %v\n", err)
	}
	return fmt.Errorf("%d problems", len(errs))
}

func showLattice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l := cfg.ToLattice()
	if errs := l.Validate(); len(errs) > 0 {
		for _, err := range errs {
			fmt.Printf("  %v\n", err)
		}
		return fmt.Errorf("%d invalid elements", len(errs))
	}

	stations := lattice.Survey(l)
	if len(stations) == 0 {
		fmt.Println("empty lattice")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tS\tKIND\tNAME\tLENGTH\tSTRENGTH")
	for i, st := range stations {
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\t%.3f\t%.4f\n",
			i+1, st.S, st.Element.Kind, st.Element.Name, st.Length, st.Strength)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ntotal path length: %.3f m\n\n", lattice.PathLength(l))

	// Sample focusing strength along s for a coarse profile.
	total := lattice.PathLength(l)
	if total <= 0 {
		return nil
	}
	samples := 80
	data := make([]float64, samples)
	for i := 0; i < samples; i++ {
		s := total * float64(i) / float64(samples-1)
		for _, st := range stations {
			if st.Length > 0 && s >= st.S && s <= st.S+st.Length {
				data[i] = st.Strength
				break
			}
		}
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("focusing strength vs s"),
	)
	fmt.Println(graph)
	return nil
}
