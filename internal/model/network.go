package model

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// network is the built-in classifier architecture:
//
//	conv(32) -> pool -> conv(64) -> pool -> conv(64) -> pool
//	-> flatten -> dense(64, relu) -> dense(4, softmax)
//
// All convolutions are 3x3, stride 1, valid padding. Weights are read-only
// after construction, so Predict is safe for concurrent use.
type network struct {
	convs  [3]*conv2D
	hidden *dense
	output *dense
	kind   string
}

// flattenDim is the activation size entering the hidden dense layer:
// 224 -> 222 -> 111 -> 109 -> 54 -> 52 -> 26, times 64 channels.
const flattenDim = 26 * 26 * 64

func newNetwork() *network {
	return &network{
		convs: [3]*conv2D{
			newConv2D(3, Channels, 32),
			newConv2D(3, 32, 64),
			newConv2D(3, 64, 64),
		},
		hidden: newDense(flattenDim, 64),
		output: newDense(64, NumClasses),
	}
}

// newUntrainedNetwork returns the architecture with Glorot-uniform kernels
// and zero biases drawn from a generator seeded with seed.
func newUntrainedNetwork(seed uint64) *network {
	n := newNetwork()
	n.kind = "untrained"
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for _, c := range n.convs {
		glorotUniform(rng, c.kernel, c.k*c.k*c.in, c.k*c.k*c.out)
	}
	glorotUniform(rng, n.hidden.weights, n.hidden.in, n.hidden.out)
	glorotUniform(rng, n.output.weights, n.output.in, n.output.out)
	return n
}

func glorotUniform(rng *rand.Rand, w []float32, fanIn, fanOut int) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range w {
		w[i] = float32((rng.Float64()*2 - 1) * limit)
	}
}

// param names one weight tensor for checkpoint I/O.
type param struct {
	name  string
	shape []int
	data  []float32
}

func (n *network) params() []param {
	ps := make([]param, 0, 10)
	for i, c := range n.convs {
		prefix := fmt.Sprintf("conv%d", i+1)
		ps = append(ps,
			param{prefix + ".kernel", []int{c.k, c.k, c.in, c.out}, c.kernel},
			param{prefix + ".bias", []int{c.out}, c.bias},
		)
	}
	for i, d := range []*dense{n.hidden, n.output} {
		prefix := fmt.Sprintf("dense%d", i+1)
		ps = append(ps,
			param{prefix + ".kernel", []int{d.in, d.out}, d.weights},
			param{prefix + ".bias", []int{d.out}, d.bias},
		)
	}
	return ps
}

func (n *network) Predict(in Tensor) ([]float32, error) {
	if in.Shape != [4]int{1, ImageSize, ImageSize, Channels} {
		return nil, fmt.Errorf("network: input shape %v, want [1 %d %d %d]", in.Shape, ImageSize, ImageSize, Channels)
	}
	if len(in.Data) != ImageSize*ImageSize*Channels {
		return nil, fmt.Errorf("network: input has %d values, want %d", len(in.Data), ImageSize*ImageSize*Channels)
	}

	x, h, w := in.Data, ImageSize, ImageSize
	for _, c := range n.convs {
		x, h, w = c.forward(x, h, w)
		x, h, w = maxPool2(x, h, w, c.out)
	}

	x = n.hidden.forward(x)
	relu(x)
	x = n.output.forward(x)
	softmax(x)
	return x, nil
}

func (n *network) Kind() string { return n.kind }

func (n *network) Close() error { return nil }
