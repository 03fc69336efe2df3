package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/reactive/pkg/observer"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

type sub struct{ id uint64 }

func (s *sub) ID() uint64           { return s.id }
func (s *sub) AddDep(*observer.Dep) {}
func (s *sub) Update()              {}

func TestMetricsCountRuntimeActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	rt := observer.New(observer.WithHooks(m), observer.WithProduction(false))

	list := observer.NewArray(1)
	state := observer.ObjectOf("list", list, "n", 0)
	rt.Observe(state)

	if got := counterValue(t, m.observersCreated.WithLabelValues("object")); got != 1 {
		t.Errorf("object observers = %v, want 1", got)
	}
	if got := counterValue(t, m.observersCreated.WithLabelValues("array")); got != 1 {
		t.Errorf("array observers = %v, want 1", got)
	}
	// Two container deps and two property deps.
	if got := counterValue(t, m.depsCreated); got != 4 {
		t.Errorf("deps created = %v, want 4", got)
	}

	s := &sub{id: observer.NextID()}
	rt.WithTarget(s, func() { state.Get("n") })
	_ = state.Set("n", 1)

	if got := counterValue(t, m.notifications); got != 1 {
		t.Errorf("notifications = %v, want 1", got)
	}
	if got := counterValue(t, m.subscribersNotified); got != 1 {
		t.Errorf("subscribers notified = %v, want 1", got)
	}
	if got := histogramCount(t, m.fanOut); got != 1 {
		t.Errorf("fan-out samples = %v, want 1", got)
	}

	list.Push(2)
	list.Reverse()
	if got := counterValue(t, m.arrayMutations.WithLabelValues("push")); got != 1 {
		t.Errorf("push mutations = %v, want 1", got)
	}
	if got := counterValue(t, m.arrayMutations.WithLabelValues("reverse")); got != 1 {
		t.Errorf("reverse mutations = %v, want 1", got)
	}

	_, _ = rt.Set(nil, "k", 1)
	if got := counterValue(t, m.warnings.WithLabelValues("W001")); got != 1 {
		t.Errorf("W001 warnings = %v, want 1", got)
	}
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg), WithNamespace("app"), WithSubsystem("state"),
		WithConstLabels(prometheus.Labels{"tree": "main"}), WithBuckets([]float64{1, 5}))

	m := gather(t, reg)
	if _, ok := m["app_state_deps_created_total"]; !ok {
		t.Errorf("expected app_state_deps_created_total, got %v", keys(m))
	}

	defer func() {
		if recover() == nil {
			t.Error("registering twice should panic")
		}
	}()
	NewMetrics(WithRegistry(reg), WithNamespace("app"), WithSubsystem("state"),
		WithConstLabels(prometheus.Labels{"tree": "main"}))
}

// gather collects reg into a map keyed by metric family name.
func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func keys(m map[string]*dto.MetricFamily) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
