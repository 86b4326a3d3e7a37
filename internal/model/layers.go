package model

import "math"

// conv2D is a square-kernel, stride-1, valid-padding convolution followed by
// ReLU. kernel is laid out [k][k][in][out].
type conv2D struct {
	kernel []float32
	bias   []float32
	k      int
	in     int
	out    int
}

func newConv2D(k, in, out int) *conv2D {
	return &conv2D{
		kernel: make([]float32, k*k*in*out),
		bias:   make([]float32, out),
		k:      k,
		in:     in,
		out:    out,
	}
}

// forward convolves an HWC activation of size h x w and returns the output
// activation with its spatial size.
func (c *conv2D) forward(x []float32, h, w int) ([]float32, int, int) {
	oh, ow := h-c.k+1, w-c.k+1
	y := make([]float32, oh*ow*c.out)

	for oy := 0; oy < oh; oy++ {
		for ox := 0; ox < ow; ox++ {
			acc := y[(oy*ow+ox)*c.out : (oy*ow+ox+1)*c.out]
			copy(acc, c.bias)
			for ky := 0; ky < c.k; ky++ {
				for kx := 0; kx < c.k; kx++ {
					px := x[((oy+ky)*w+ox+kx)*c.in : ((oy+ky)*w+ox+kx+1)*c.in]
					kOff := (ky*c.k + kx) * c.in * c.out
					for ic, v := range px {
						if v == 0 {
							continue
						}
						row := c.kernel[kOff+ic*c.out : kOff+(ic+1)*c.out]
						for oc, wt := range row {
							acc[oc] += v * wt
						}
					}
				}
			}
			relu(acc)
		}
	}
	return y, oh, ow
}

// maxPool2 applies 2x2 max pooling with stride 2, dropping an odd trailing
// row or column.
func maxPool2(x []float32, h, w, ch int) ([]float32, int, int) {
	oh, ow := h/2, w/2
	y := make([]float32, oh*ow*ch)

	for oy := 0; oy < oh; oy++ {
		for ox := 0; ox < ow; ox++ {
			dst := y[(oy*ow+ox)*ch : (oy*ow+ox+1)*ch]
			copy(dst, x[((2*oy)*w+2*ox)*ch:((2*oy)*w+2*ox+1)*ch])
			for _, off := range [3][2]int{{0, 1}, {1, 0}, {1, 1}} {
				src := x[((2*oy+off[0])*w+2*ox+off[1])*ch : ((2*oy+off[0])*w+2*ox+off[1]+1)*ch]
				for c, v := range src {
					if v > dst[c] {
						dst[c] = v
					}
				}
			}
		}
	}
	return y, oh, ow
}

// dense is a fully connected layer. weights are laid out [in][out].
type dense struct {
	weights []float32
	bias    []float32
	in      int
	out     int
}

func newDense(in, out int) *dense {
	return &dense{
		weights: make([]float32, in*out),
		bias:    make([]float32, out),
		in:      in,
		out:     out,
	}
}

func (d *dense) forward(x []float32) []float32 {
	y := make([]float32, d.out)
	copy(y, d.bias)
	for i, v := range x {
		if v == 0 {
			continue
		}
		row := d.weights[i*d.out : (i+1)*d.out]
		for o, wt := range row {
			y[o] += v * wt
		}
	}
	return y
}

func relu(x []float32) {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

// softmax normalizes x in place into a probability distribution.
func softmax(x []float32) {
	if len(x) == 0 {
		return
	}
	maxV := x[0]
	for _, v := range x[1:] {
		if v > maxV {
			maxV = v
		}
	}
	var sum float64
	for i, v := range x {
		e := math.Exp(float64(v - maxV))
		x[i] = float32(e)
		sum += e
	}
	for i := range x {
		x[i] = float32(float64(x[i]) / sum)
	}
}
