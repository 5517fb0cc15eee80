package tuned

import (
	"fmt"
	"testing"

	"github.com/emtune/tuner-core/internal/search"
)

type nopGenerator struct{}

func (nopGenerator) Generate(baseName, baseDir, outputName, outputDir string, params map[string]float64) error {
	return nil
}

type scriptedAnalyzer struct {
	results []func() (float64, error)
	calls   int
}

func (a *scriptedAnalyzer) Analyze(artifactName, outputDir, quantity string) (float64, error) {
	if a.calls >= len(a.results) {
		return 0, fmt.Errorf("unscripted analyze call for %s", artifactName)
	}
	r := a.results[a.calls]
	a.calls++
	return r()
}

func value(v float64) func() (float64, error) {
	return func() (float64, error) { return v, nil }
}

func notReady() func() (float64, error) {
	return func() (float64, error) {
		return 0, fmt.Errorf("output missing: %w", search.ErrOutputNotReady)
	}
}

type nopStore struct{}

func (nopStore) Save(state search.State) error { return nil }
func (nopStore) Load(name string) (search.State, error) {
	return search.State{}, search.ErrStateNotFound
}

// newScriptedOptimizer builds an optimizer whose analyzer plays back
// the given results, starting with the bootstrap analysis of batch 1.
func newScriptedOptimizer(t *testing.T, name string, results ...func() (float64, error)) *search.Optimizer {
	t.Helper()
	settings := search.Settings{
		TargetQuantity: "f0",
		TargetValue:    1000,
		Tolerance:      0.01,
		Correlation:    1,
		MeshSize:       0.1,
		Strategy:       search.NewPercentScale(),
	}
	first := search.Batch{BatchNo: 1, ArtifactName: name + "_base", ArtifactPath: "a1", OutputPath: "o1"}
	o, err := search.New(name, "W1", first, 100, settings,
		nopGenerator{}, &scriptedAnalyzer{results: results}, nopStore{}, nil)
	if err != nil {
		t.Fatalf("building optimizer %s: %v", name, err)
	}
	return o
}

func TestStatusStoreUpdate(t *testing.T) {
	store := NewStatusStore()
	o := newScriptedOptimizer(t, "res_a", value(900))

	store.Update(o, "")
	status, ok := store.Get("res_a")
	if !ok {
		t.Fatalf("expected snapshot for res_a")
	}
	if status.State != "searching" {
		t.Errorf("expected searching state, got %s", status.State)
	}
	if status.BatchesDone != 1 {
		t.Errorf("expected 1 analyzed batch, got %d", status.BatchesDone)
	}
	if status.BestBatchNo != 1 {
		t.Errorf("expected batch 1 as best, got %d", status.BestBatchNo)
	}
	if status.UpdatedAtMs == 0 {
		t.Errorf("expected update timestamp")
	}
}

func TestStatusStoreWaitingState(t *testing.T) {
	store := NewStatusStore()
	o := newScriptedOptimizer(t, "res_a", value(900))

	store.Update(o, search.RoundWaiting)
	status, _ := store.Get("res_a")
	if status.State != "waiting" {
		t.Errorf("expected waiting state, got %s", status.State)
	}
}

func TestStatusStoreStoppedState(t *testing.T) {
	store := NewStatusStore()
	// 995 is inside the tolerance band, so the search stops at batch 1.
	o := newScriptedOptimizer(t, "res_a", value(995))

	store.Update(o, search.RoundFinished)
	status, _ := store.Get("res_a")
	if status.State != "stopped" {
		t.Errorf("expected stopped state, got %s", status.State)
	}
}

func TestStatusStoreListOrder(t *testing.T) {
	store := NewStatusStore()
	store.Update(newScriptedOptimizer(t, "res_b", value(900)), "")
	store.Update(newScriptedOptimizer(t, "res_a", value(900)), "")
	// A second update must not duplicate the entry.
	store.Update(newScriptedOptimizer(t, "res_b", value(900)), "")

	list := store.List()
	if len(list) != 2 || list[0].Name != "res_b" || list[1].Name != "res_a" {
		names := make([]string, len(list))
		for i, s := range list {
			names[i] = s.Name
		}
		t.Errorf("expected [res_b res_a], got %v", names)
	}

	if _, ok := store.Get("nope"); ok {
		t.Errorf("expected miss for unknown optimizer")
	}
}
