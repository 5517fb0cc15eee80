// Package tuned is the daemon glue around the search engine: it builds
// an optimizer set from a campaign config, drives scheduler rounds on
// a polling interval, and serves status over HTTP.
package tuned

import (
	"fmt"

	"github.com/emtune/tuner-core/internal/analysis"
	"github.com/emtune/tuner-core/internal/artifact"
	"github.com/emtune/tuner-core/internal/cache"
	"github.com/emtune/tuner-core/internal/search"
	"github.com/emtune/tuner-core/pkg/config"
	"github.com/emtune/tuner-core/pkg/logger"
)

// LogEvents adapts core diagnostic events onto the default logger.
func LogEvents() search.EventFunc {
	return func(e search.Event) {
		switch e.Level {
		case search.EventWarn:
			logger.Warn(e.Message, "optimizer", e.Optimizer, "batch", e.BatchNo)
		default:
			logger.Info(e.Message, "optimizer", e.Optimizer, "batch", e.BatchNo)
		}
	}
}

// BuildSet wires collaborators and constructs every optimizer the
// campaign defines. Construction analyzes batch 1 for each optimizer,
// so the batch-1 solver outputs must exist.
func BuildSet(campaign *config.Campaign) (*search.Set, *search.Overrides, error) {
	store, err := cache.NewStore(campaign.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	generator := artifact.NewGenerator(campaign.ArtifactExt)
	analyzer, err := analysis.NewSParamAnalyzer(campaign.FreqUnit)
	if err != nil {
		return nil, nil, err
	}

	set := search.NewSet()
	overrides := &search.Overrides{
		Values:     make(map[string]map[int]float64),
		IgnoreStop: make(map[string]map[int]bool),
		Strategies: make(map[string]map[int]search.Strategy),
	}

	for i := range campaign.Optimizers {
		spec := &campaign.Optimizers[i]

		strategy, err := search.NewStrategy(spec.Strategy.Kind, spec.Strategy.Degree)
		if err != nil {
			return nil, nil, fmt.Errorf("optimizer %s: %w", spec.Name, err)
		}

		settings := search.Settings{
			TargetQuantity: spec.Target.Quantity,
			TargetValue:    spec.Target.Value,
			Tolerance:      spec.Target.Tolerance,
			Correlation:    spec.CorrelationSign(),
			MeshSize:       spec.MeshSize,
			MinValue:       spec.MinValue,
			MaxValue:       spec.MaxValue,
			Strategy:       strategy,
		}
		first := search.Batch{
			BatchNo:      1,
			ArtifactName: spec.Batch1.ArtifactName,
			ArtifactPath: spec.Batch1.ArtifactDir,
			OutputPath:   spec.Batch1.OutputDir,
		}

		opt, err := search.New(spec.Name, spec.Variable, first, spec.InitialValue, settings,
			generator, analyzer, store, &search.Options{Events: LogEvents()})
		if err != nil {
			return nil, nil, err
		}
		if err := set.Add(opt); err != nil {
			return nil, nil, err
		}

		if spec.Overrides != nil {
			if len(spec.Overrides.Values) > 0 {
				overrides.Values[spec.Name] = spec.Overrides.Values
			}
			if len(spec.Overrides.IgnoreStop) > 0 {
				overrides.IgnoreStop[spec.Name] = spec.Overrides.IgnoreStop
			}
			if len(spec.Overrides.Strategies) > 0 {
				strategies := make(map[int]search.Strategy, len(spec.Overrides.Strategies))
				for batchNo, ss := range spec.Overrides.Strategies {
					s, err := search.NewStrategy(ss.Kind, ss.Degree)
					if err != nil {
						return nil, nil, fmt.Errorf("optimizer %s: strategy override for batch %d: %w", spec.Name, batchNo, err)
					}
					strategies[batchNo] = s
				}
				overrides.Strategies[spec.Name] = strategies
			}
		}
	}

	if err := overrides.Validate(set); err != nil {
		return nil, nil, err
	}
	return set, overrides, nil
}
