// Package config holds the runtime configuration of the rigidscene command.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/akmonengine/rigidscene"
	"github.com/akmonengine/rigidscene/feather"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScenario       = "drop"
	DefaultTimestep       = 1.0 / 60
	DefaultDuration       = 5.0
	DefaultRecalcInterval = rigidscene.DefaultRecalcInterval
)

type Config struct {
	World     WorldConfig     `yaml:"world"`
	Collision CollisionConfig `yaml:"collision"`
	Engine    EngineConfig    `yaml:"engine"`
	Run       RunConfig       `yaml:"run"`
}

// WorldConfig mirrors the fields of a rigid body collection.
type WorldConfig struct {
	Gravity             [3]float64 `yaml:"gravity"`
	Iterations          int        `yaml:"iterations"`
	ErrorCorrection     float64    `yaml:"error_correction"`
	ConstantForceMix    float64    `yaml:"constant_force_mix"`
	MaxCorrectionSpeed  float64    `yaml:"max_correction_speed"`
	SurfaceThickness    float64    `yaml:"surface_thickness"`
	AutoDisable         bool       `yaml:"auto_disable"`
	DisableLinearSpeed  float64    `yaml:"disable_linear_speed"`
	DisableAngularSpeed float64    `yaml:"disable_angular_speed"`
	DisableTime         float64    `yaml:"disable_time"`
	PreferAccuracy      bool       `yaml:"prefer_accuracy"`
}

// CollisionConfig mirrors the fields of a collision collection.
type CollisionConfig struct {
	AppliedParameters        []string   `yaml:"applied_parameters"`
	Bounce                   float64    `yaml:"bounce"`
	MinBounceSpeed           float64    `yaml:"min_bounce_speed"`
	Friction                 [2]float64 `yaml:"friction"`
	Slip                     [2]float64 `yaml:"slip"`
	SurfaceSpeed             [2]float64 `yaml:"surface_speed"`
	SoftnessErrorCorrection  float64    `yaml:"softness_error_correction"`
	SoftnessConstantForceMix float64    `yaml:"softness_constant_force_mix"`
}

type EngineConfig struct {
	Workers         int     `yaml:"workers"`
	ContactCapacity int     `yaml:"contact_capacity"`
	CellSize        float64 `yaml:"cell_size"`
}

type RunConfig struct {
	Scenario string  `yaml:"scenario"`
	Timestep float64 `yaml:"timestep"`
	Duration float64 `yaml:"duration"`
	// RecalcInterval is only used when Timestep is zero.
	RecalcInterval int `yaml:"recalc_interval"`
	Verbosity      int `yaml:"verbosity"`
}

// DefaultConfig returns the defaults of the scene nodes and of the engine.
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Gravity:            [3]float64{0, -9.8, 0},
			Iterations:         10,
			ErrorCorrection:    0.8,
			ConstantForceMix:   0.0001,
			MaxCorrectionSpeed: -1,
		},
		Collision: CollisionConfig{
			AppliedParameters:        []string{rigidscene.ParamBounce},
			MinBounceSpeed:           0.1,
			SoftnessErrorCorrection:  0.8,
			SoftnessConstantForceMix: 0.0001,
		},
		Engine: EngineConfig{
			Workers:         feather.DEFAULT_WORKERS,
			ContactCapacity: feather.DEFAULT_CONTACT_CAPACITY,
			CellSize:        feather.DEFAULT_CELL_SIZE,
		},
		Run: RunConfig{
			Scenario:       DefaultScenario,
			Timestep:       DefaultTimestep,
			Duration:       DefaultDuration,
			RecalcInterval: DefaultRecalcInterval,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate runs the world and collision sections through the node setters
// of detached nodes, then checks the engine and run sections. Every problem
// is reported.
func (c *Config) Validate() error {
	errs := []error{
		c.ApplyWorld(rigidscene.NewRigidBodyCollection(nil)),
		c.ApplyCollision(rigidscene.NewCollisionCollection(nil)),
	}

	if c.Engine.Workers < 1 {
		errs = append(errs, fmt.Errorf("engine.workers = %d: %w", c.Engine.Workers, rigidscene.ErrNonPositive))
	}
	if c.Engine.ContactCapacity < 1 {
		errs = append(errs, fmt.Errorf("engine.contact_capacity = %d: %w", c.Engine.ContactCapacity, rigidscene.ErrNonPositive))
	}
	if c.Engine.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("engine.cell_size = %v: %w", c.Engine.CellSize, rigidscene.ErrNonPositive))
	}
	if c.Run.Timestep < 0 {
		errs = append(errs, fmt.Errorf("run.timestep = %v: %w", c.Run.Timestep, rigidscene.ErrNegative))
	}
	if c.Run.Duration <= 0 {
		errs = append(errs, fmt.Errorf("run.duration = %v: %w", c.Run.Duration, rigidscene.ErrNonPositive))
	}
	if c.Run.Timestep == 0 && c.Run.RecalcInterval < 1 {
		errs = append(errs, fmt.Errorf("run.recalc_interval = %d: %w", c.Run.RecalcInterval, rigidscene.ErrNonPositive))
	}

	return errors.Join(errs...)
}

// ApplyWorld sets the world section on c. Rejected values leave the node
// field untouched; all rejections are returned together.
func (c *Config) ApplyWorld(rc *rigidscene.RigidBodyCollection) error {
	w := c.World
	rc.SetGravity(mgl64.Vec3(w.Gravity))
	rc.SetAutoDisable(w.AutoDisable)
	rc.SetPreferAccuracy(w.PreferAccuracy)

	return errors.Join(
		rc.SetIterations(w.Iterations),
		rc.SetErrorCorrection(w.ErrorCorrection),
		rc.SetConstantForceMix(w.ConstantForceMix),
		rc.SetMaxCorrectionSpeed(w.MaxCorrectionSpeed),
		rc.SetContactSurfaceThickness(w.SurfaceThickness),
		rc.SetDisableLinearSpeed(w.DisableLinearSpeed),
		rc.SetDisableAngularSpeed(w.DisableAngularSpeed),
		rc.SetDisableTime(w.DisableTime),
	)
}

// ApplyCollision sets the collision section on cc.
func (c *Config) ApplyCollision(cc *rigidscene.CollisionCollection) error {
	col := c.Collision
	cc.SetAppliedParameters(col.AppliedParameters)
	cc.SetFrictionCoefficients(col.Friction)
	cc.SetSlipFactors(col.Slip)
	cc.SetSurfaceSpeed(col.SurfaceSpeed)

	return errors.Join(
		cc.SetBounce(col.Bounce),
		cc.SetMinBounceSpeed(col.MinBounceSpeed),
		cc.SetSoftnessErrorCorrection(col.SoftnessErrorCorrection),
		cc.SetSoftnessConstantForceMix(col.SoftnessConstantForceMix),
	)
}

// EngineOptions translates the engine section into backend options.
func (c *Config) EngineOptions() []feather.Option {
	return []feather.Option{
		feather.WithWorkers(c.Engine.Workers),
		feather.WithContactCapacity(c.Engine.ContactCapacity),
		feather.WithCellSize(c.Engine.CellSize),
	}
}

// ManagerOptions picks a fixed timestep when one is configured and a
// measured one otherwise.
func (c *Config) ManagerOptions() []rigidscene.ManagerOption {
	if c.Run.Timestep > 0 {
		return []rigidscene.ManagerOption{rigidscene.WithFixedTimestep(c.Run.Timestep)}
	}
	return []rigidscene.ManagerOption{rigidscene.WithRecalcInterval(c.Run.RecalcInterval)}
}

// Frames is the number of frames covering the run duration at the configured
// timestep, or at the default one when the timestep is measured.
func (c *Config) Frames() int {
	dt := c.Run.Timestep
	if dt <= 0 {
		dt = rigidscene.DefaultTimestep
	}
	return int(c.Run.Duration/dt + 0.5)
}
