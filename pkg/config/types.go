package config

// Campaign is the top-level configuration for a tuning run: global
// daemon settings plus one block per optimizer.
type Campaign struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// PollIntervalMs is the delay between scheduler rounds while
	// waiting for solver output.
	PollIntervalMs int64 `yaml:"poll_interval_ms"`
	// CacheDir holds per-optimizer state snapshots.
	CacheDir string `yaml:"cache_dir"`
	// ArtifactExt is the simulation-input file extension, e.g. ".son".
	ArtifactExt string `yaml:"artifact_ext"`
	// FreqUnit is the frequency unit of solver output files.
	FreqUnit string `yaml:"freq_unit"`
	// ReportPath, when set, is where the final xlsx report is written.
	ReportPath string `yaml:"report_path"`

	Optimizers []OptimizerSpec `yaml:"optimizers"`
}

// OptimizerSpec configures one single-parameter optimizer.
type OptimizerSpec struct {
	Name         string  `yaml:"name"`
	Variable     string  `yaml:"variable"`
	InitialValue float64 `yaml:"initial_value"`

	Batch1      BatchSpec    `yaml:"batch1"`
	Target      TargetSpec   `yaml:"target"`
	Correlation string       `yaml:"correlation"` // "+" or "-"
	MeshSize    float64      `yaml:"mesh_size"`
	MinValue    *float64     `yaml:"min_value"`
	MaxValue    *float64     `yaml:"max_value"`
	Strategy    StrategySpec `yaml:"strategy"`

	Overrides *OverrideSpec `yaml:"overrides"`
}

// BatchSpec locates the caller-supplied batch-1 artifact.
type BatchSpec struct {
	ArtifactName string `yaml:"artifact_name"`
	ArtifactDir  string `yaml:"artifact_dir"`
	OutputDir    string `yaml:"output_dir"`
}

// TargetSpec is the measured quantity the search tries to match.
type TargetSpec struct {
	Quantity  string  `yaml:"quantity"`
	Value     float64 `yaml:"value"`
	Tolerance float64 `yaml:"tolerance"`
}

// StrategySpec names a proposal strategy. Degree is only consulted for
// poly_fit.
type StrategySpec struct {
	Kind   string `yaml:"kind"`
	Degree int    `yaml:"degree"`
}

// OverrideSpec keys per-batch overrides by the batch number they apply
// from, inclusive.
type OverrideSpec struct {
	Values     map[int]float64      `yaml:"values"`
	IgnoreStop map[int]bool         `yaml:"ignore_stop"`
	Strategies map[int]StrategySpec `yaml:"strategies"`
}
