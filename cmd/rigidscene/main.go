package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/akmonengine/rigidscene"
	"github.com/akmonengine/rigidscene/feather"
	"github.com/akmonengine/rigidscene/internal/config"
	"github.com/akmonengine/rigidscene/internal/scenario"
	"github.com/akmonengine/rigidscene/internal/viz"
)

var (
	configFile string
	verbose    int
	dt         float64
	duration   float64
	accurate   bool
	workers    int
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rigidscene",
		Short:        "rigid body scenes over the feather engine",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0, "log verbosity")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addRunFlags(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [scenario]",
		Short: "run a scenario with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchScenario,
	}
	addRunFlags(watchCmd)
	watchCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range scenario.Names() {
				fmt.Fprintf(w, "%s\t%s\n", name, scenario.Describe(name))
			}
			w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration to path, or print it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, watchCmd, listCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultTimestep, "fixed timestep, 0 to measure it from the frame rate")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().BoolVar(&accurate, "accurate", false, "use the accurate solver")
	cmd.Flags().IntVar(&workers, "workers", feather.DEFAULT_WORKERS, "engine workers")
}

// loadConfig reads the config file when given and lets explicit flags
// override it.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Lookup("dt") != nil && flags.Changed("dt") {
		cfg.Run.Timestep = dt
	}
	if flags.Lookup("time") != nil && flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Lookup("accurate") != nil && flags.Changed("accurate") {
		cfg.World.PreferAccuracy = accurate
	}
	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		cfg.Engine.Workers = workers
	}
	if flags.Changed("verbose") {
		cfg.Run.Verbosity = verbose
	}
	if len(args) > 0 {
		cfg.Run.Scenario = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}

// setup builds the configured scenario and registers it in a manager.
func setup(cfg *config.Config, logger logr.Logger) (*scenario.Scene, *rigidscene.Manager, error) {
	opts := append(cfg.EngineOptions(),
		feather.WithEventListener(feather.COLLISION_ENTER, func(feather.Event) {
			logger.V(2).Info("collision enter")
		}),
		feather.WithEventListener(feather.ON_SLEEP, func(feather.Event) {
			logger.V(1).Info("body disabled")
		}),
	)
	eng := feather.New(opts...)

	scene, err := scenario.Build(cfg.Run.Scenario, eng)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyWorld(scene.Collection); err != nil {
		return nil, nil, err
	}
	if scene.Collision != nil {
		// scenes may tune their own surface
		bounce := scene.Collision.Bounce()
		if err := cfg.ApplyCollision(scene.Collision); err != nil {
			return nil, nil, err
		}
		if cfg.Collision.Bounce == 0 {
			_ = scene.Collision.SetBounce(bounce)
		}
	}
	scene.Start()

	manager := rigidscene.NewManager(append(cfg.ManagerOptions(), rigidscene.WithLogger(logger.WithName(scene.Name)))...)
	if err := scene.Register(manager); err != nil {
		manager.Clear()
		return nil, nil, err
	}
	return scene, manager, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Run.Verbosity)

	scene, manager, err := setup(cfg, logger)
	if err != nil {
		return err
	}
	defer manager.Clear()

	frames := cfg.Frames()
	samples := make([]float64, 0, frames)
	logger.Info("running", "scenario", scene.Name, "frames", frames)

	start := time.Now()
	manager.PreFrame()
	for range frames {
		manager.PostFrame(nil)
		manager.PreFrame()
		samples = append(samples, scene.Probe())
	}

	fmt.Println(viz.Summary(scene, samples, time.Since(start)))
	return nil
}

func watchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// logs would tear the view
	logger := logr.Discard()

	scene, manager, err := setup(cfg, logger)
	if err != nil {
		return err
	}
	defer manager.Clear()

	return viz.Run(scene, manager, frameRate, cfg.Frames())
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Printf("config written to %s\n", args[0])
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(strings.TrimSpace(string(data)) + "\n")
	return nil
}
