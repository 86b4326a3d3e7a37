package model

import (
	"math"
	"math/rand/v2"
	"testing"
)

func randomTensor(seed uint64) Tensor {
	rng := rand.New(rand.NewPCG(seed, seed))
	t := NewTensor()
	for i := range t.Data {
		t.Data[i] = rng.Float32()
	}
	return t
}

func checkDistribution(t *testing.T, probs []float32) {
	t.Helper()
	if len(probs) != NumClasses {
		t.Fatalf("expected %d probabilities, got %d", NumClasses, len(probs))
	}
	var sum float64
	for i, p := range probs {
		if p < 0 || math.IsNaN(float64(p)) {
			t.Fatalf("probs[%d] = %f", i, p)
		}
		sum += float64(p)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Fatalf("probabilities sum to %f, want 1", sum)
	}
}

func TestUntrainedNetworkOutputsDistribution(t *testing.T) {
	n := newUntrainedNetwork(42)
	if n.Kind() != "untrained" {
		t.Fatalf("Kind() = %q, want untrained", n.Kind())
	}

	for _, in := range []Tensor{NewTensor(), randomTensor(1)} {
		probs, err := n.Predict(in)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		checkDistribution(t, probs)
	}
}

func TestUntrainedNetworkIsSeeded(t *testing.T) {
	a := newUntrainedNetwork(7)
	b := newUntrainedNetwork(7)
	c := newUntrainedNetwork(8)

	pa, pb, pc := a.params(), b.params(), c.params()
	same := true
	for i := range pa {
		for j := range pa[i].data {
			if pa[i].data[j] != pb[i].data[j] {
				t.Fatalf("%s[%d] differs between equal seeds", pa[i].name, j)
			}
			if pa[i].data[j] != pc[i].data[j] {
				same = false
			}
		}
	}
	if same {
		t.Fatal("different seeds produced identical weights")
	}
}

func TestUntrainedNetworkGlorotBounds(t *testing.T) {
	n := newUntrainedNetwork(3)
	limit := float32(math.Sqrt(6.0 / float64(3*3*3+3*3*32)))
	for i, w := range n.convs[0].kernel {
		if w < -limit || w > limit {
			t.Fatalf("conv1.kernel[%d] = %f outside ±%f", i, w, limit)
		}
	}
	for i, b := range n.hidden.bias {
		if b != 0 {
			t.Fatalf("dense1.bias[%d] = %f, want 0", i, b)
		}
	}
}

func TestNetworkParamsCoverArchitecture(t *testing.T) {
	n := newNetwork()
	want := map[string][]int{
		"conv1.kernel":  {3, 3, 3, 32},
		"conv1.bias":    {32},
		"conv2.kernel":  {3, 3, 32, 64},
		"conv2.bias":    {64},
		"conv3.kernel":  {3, 3, 64, 64},
		"conv3.bias":    {64},
		"dense1.kernel": {flattenDim, 64},
		"dense1.bias":   {64},
		"dense2.kernel": {64, 4},
		"dense2.bias":   {4},
	}

	ps := n.params()
	if len(ps) != len(want) {
		t.Fatalf("got %d params, want %d", len(ps), len(want))
	}
	for _, p := range ps {
		shape, ok := want[p.name]
		if !ok {
			t.Fatalf("unexpected param %q", p.name)
		}
		size := 1
		for i, d := range shape {
			if p.shape[i] != d {
				t.Fatalf("%s shape = %v, want %v", p.name, p.shape, shape)
			}
			size *= d
		}
		if len(p.data) != size {
			t.Fatalf("%s has %d values, want %d", p.name, len(p.data), size)
		}
	}
}

func TestNetworkRejectsBadShape(t *testing.T) {
	n := newUntrainedNetwork(1)
	bad := Tensor{Shape: [4]int{1, 32, 32, 3}, Data: make([]float32, 32*32*3)}
	if _, err := n.Predict(bad); err == nil {
		t.Fatal("expected error for wrong input shape")
	}
}
