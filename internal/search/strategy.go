package search

import "fmt"

// Inputs carries the search history and settings a strategy needs to
// propose the next variable value. Strategies must not mutate the
// history slices.
type Inputs struct {
	CurrentOutput  float64
	TargetOutput   float64
	VariableValues []float64
	OutputValues   []float64
	Correlation    int // +1 or -1
	MeshSize       float64
}

// TracePoint is one point of a strategy's fit polyline, used by
// external presentation layers to draw the fit over the history.
type TracePoint struct {
	Variable float64
	Output   float64
}

// Strategy proposes the next variable value from search history.
type Strategy interface {
	Name() string
	NextValue(in Inputs) (float64, error)
	// Trace renders the strategy's current fit as a polyline. A nil
	// slice means the strategy has nothing to draw.
	Trace(in Inputs) ([]TracePoint, error)
}

// Strategy kinds accepted by NewStrategy and campaign configs.
const (
	KindPercentScale       = "percent_scale"
	KindMeshStep           = "mesh_step"
	KindLinFit             = "lin_fit"
	KindPolyFit            = "poly_fit"
	KindCrossingPointSplit = "crossing_point_split"
)

// NewStrategy builds a strategy from its config kind. degree is only
// consulted for poly_fit.
func NewStrategy(kind string, degree int) (Strategy, error) {
	switch kind {
	case KindPercentScale:
		return NewPercentScale(), nil
	case KindMeshStep:
		return NewMeshStep(), nil
	case KindLinFit:
		return NewLinFit(), nil
	case KindPolyFit:
		return NewPolyFit(degree)
	case KindCrossingPointSplit:
		return NewCrossingPointSplit(), nil
	default:
		return nil, fmt.Errorf("unknown strategy kind %q", kind)
	}
}

// minFitPoints is the history size below which fit-based strategies
// delegate to PercentScale.
const minFitPoints = 4

// alreadyTried reports whether value has been simulated before. Values
// are snapped to the mesh grid before comparison happens, so exact
// equality is the right test.
func alreadyTried(value float64, variableValues []float64) bool {
	for _, v := range variableValues {
		if v == value {
			return true
		}
	}
	return false
}
