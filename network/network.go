// Package network implements a minimal feedforward neural network: sigmoid
// units grouped into layers, dense weight matrices between consecutive
// layers, quadratic-loss backpropagation and plain stochastic gradient
// descent, one gradient step per training sample.
package network

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"feednet/linalg"
)

// DefaultLearningRate is used when Config.LearningRate is zero.
const DefaultLearningRate = 0.5

var (
	// ErrInvalidArchitecture is returned for configurations the engine does
	// not support: fewer than two layers, a non-positive layer size, or a
	// negative learning rate.
	ErrInvalidArchitecture = errors.New("invalid network architecture")

	// ErrNoTarget is returned by BackPropagate when no target has been set
	// for the current sample.
	ErrNoTarget = errors.New("no target set")
)

// Sample is one training example: an input vector sized to the input layer
// and a target vector sized to the output layer.
type Sample struct {
	Inputs  []float64
	Targets []float64
}

// Config describes a network to construct.
type Config struct {
	// LayerSizes holds the unit count of each layer, input first.
	// At least two layers are required.
	LayerSizes []int

	// LearningRate is the fixed SGD step size. Zero selects
	// DefaultLearningRate; negative values are rejected.
	LearningRate float64

	// Rand is the source for weight and bias initialization. Nil falls back
	// to the process-global source; pass a seeded *rand.Rand for
	// deterministic construction.
	Rand *rand.Rand

	// Diagnostics receives the training trace (per-pass layer states,
	// targets and error vectors). Nil means os.Stdout; io.Discard silences
	// the trace.
	Diagnostics io.Writer
}

// Network owns the layer sequence and the weight matrices connecting
// consecutive layers. All state is mutated in place by the calling
// goroutine; a Network is not safe for concurrent use.
type Network struct {
	layers  []*Layer
	weights []*linalg.Matrix
	// errs is rebuilt once per backpropagation pass, in reverse layer order:
	// errs[0] is the output layer's error, the last entry belongs to the
	// layer adjacent to the input layer.
	errs   [][]float64
	rate   float64
	target []float64
	out    io.Writer
}

// New constructs a network from cfg: one layer per size (layer 0 is the
// input layer and carries no trainable bias), one randomly initialized
// weight matrix of shape (sizes[k+1], sizes[k]) per consecutive pair, and a
// random bias for every unit outside the input layer.
func New(cfg Config) (*Network, error) {
	if len(cfg.LayerSizes) < 2 {
		return nil, fmt.Errorf("network: got %d layer sizes, need at least 2: %w", len(cfg.LayerSizes), ErrInvalidArchitecture)
	}
	for i, size := range cfg.LayerSizes {
		if size < 1 {
			return nil, fmt.Errorf("network: layer %d has size %d: %w", i, size, ErrInvalidArchitecture)
		}
	}
	if cfg.LearningRate < 0 {
		return nil, fmt.Errorf("network: learning rate %v: %w", cfg.LearningRate, ErrInvalidArchitecture)
	}

	n := &Network{
		layers:  make([]*Layer, len(cfg.LayerSizes)),
		weights: make([]*linalg.Matrix, len(cfg.LayerSizes)-1),
		rate:    cfg.LearningRate,
		out:     cfg.Diagnostics,
	}
	if n.rate == 0 {
		n.rate = DefaultLearningRate
	}
	if n.out == nil {
		n.out = os.Stdout
	}

	for i, size := range cfg.LayerSizes {
		n.layers[i] = newLayer(size, i == 0)
	}

	var src rand.Source
	if cfg.Rand != nil {
		src = cfg.Rand
	}
	bias := biasDist(src)
	for k := 0; k < len(cfg.LayerSizes)-1; k++ {
		w, err := linalg.NewRandom(cfg.LayerSizes[k+1], cfg.LayerSizes[k], src)
		if err != nil {
			return nil, fmt.Errorf("network: allocating weights %d: %w", k, err)
		}
		n.weights[k] = w

		next := n.layers[k+1]
		for j := 0; j < next.Size(); j++ {
			next.SetBiasAt(j, bias())
		}
	}
	return n, nil
}

// SetInput writes values into the input layer, one per unit. The length must
// equal the input layer size.
func (n *Network) SetInput(values []float64) error {
	in := n.layers[0]
	if len(values) != in.Size() {
		return fmt.Errorf("network: setting %d inputs on input layer of size %d: %w", len(values), in.Size(), linalg.ErrShapeMismatch)
	}
	for i, v := range values {
		in.SetInputAt(i, v)
	}
	return nil
}

// SetTarget stores the target vector for the next backpropagation. The
// length must equal the output layer size.
func (n *Network) SetTarget(values []float64) error {
	out := n.layers[len(n.layers)-1]
	if len(values) != out.Size() {
		return fmt.Errorf("network: setting %d targets on output layer of size %d: %w", len(values), out.Size(), linalg.ErrShapeMismatch)
	}
	n.target = append(n.target[:0], values...)
	return nil
}

// FeedForward propagates the input layer's values forward: for each
// consecutive layer pair, the activations of layer k are multiplied by
// weights[k] and written into the inputs of layer k+1 (which recomputes its
// activations and derivatives). After FeedForward, Output holds the
// network's output.
func (n *Network) FeedForward() error {
	for k := 0; k < len(n.layers)-1; k++ {
		next, err := n.weights[k].MulVec(n.layers[k].Activations())
		if err != nil {
			return fmt.Errorf("network: feedforward at layer %d: %w", k, err)
		}
		for j, v := range next {
			n.layers[k+1].SetInputAt(j, v)
		}
	}
	return nil
}

// ClearErrors discards the error buffer from any previous training pass.
// Callers of BackPropagate are responsible for clearing first.
func (n *Network) ClearErrors() {
	n.errs = n.errs[:0]
}

// BackPropagate computes per-layer error vectors under the quadratic cost,
// whose gradient at the output is simply activation minus target. Errors are
// appended in reverse layer order, output layer first, so after a complete
// pass errs holds one vector for every layer except the input layer. Each
// vector is also written to the diagnostic stream.
func (n *Network) BackPropagate() error {
	if len(n.target) == 0 {
		return fmt.Errorf("network: backpropagate: %w", ErrNoTarget)
	}

	last := n.layers[len(n.layers)-1]
	output := last.Activations()
	gradCost := make([]float64, len(output))
	for i := range output {
		gradCost[i] = output[i] - n.target[i]
	}
	outputErr, err := linalg.HadamardProduct(gradCost, last.Derivatives())
	if err != nil {
		return fmt.Errorf("network: output error: %w", err)
	}
	n.errs = append(n.errs, outputErr)

	fmt.Fprint(n.out, "ERRORS:")
	linalg.Fprint(n.out, n.errs[0])

	// Walk the hidden layers backward, excluding the input layer. Each
	// layer's error is the previous error pulled back through the transposed
	// weights, gated by the layer's own derivatives.
	for k := len(n.layers) - 2; k > 0; k-- {
		backpropagated, err := n.weights[k].Transpose().MulVec(n.errs[len(n.errs)-1])
		if err != nil {
			return fmt.Errorf("network: backpropagating into layer %d: %w", k, err)
		}
		layerErr, err := linalg.HadamardProduct(backpropagated, n.layers[k].Derivatives())
		if err != nil {
			return fmt.Errorf("network: error at layer %d: %w", k, err)
		}
		n.errs = append(n.errs, layerErr)

		linalg.Fprint(n.out, layerErr)
	}
	fmt.Fprintln(n.out)
	return nil
}

// Update applies one gradient-descent step to every weight matrix and every
// non-input bias using the most recent error vectors. errs is stored in
// reverse layer order, so connection l reads errs[len(errs)-1-l].
func (n *Network) Update() error {
	if len(n.errs) != len(n.weights) {
		return fmt.Errorf("network: update with %d error vectors for %d weight matrices: %w", len(n.errs), len(n.weights), linalg.ErrShapeMismatch)
	}
	for l := 0; l < len(n.weights); l++ {
		w := n.weights[l]
		errVec := n.errs[len(n.errs)-1-l]
		from, to := n.layers[l], n.layers[l+1]

		activations := from.Activations()
		for j := 0; j < to.Size(); j++ {
			for i := 0; i < from.Size(); i++ {
				w.Set(j, i, w.At(j, i)-n.rate*activations[i]*errVec[j])
			}
			to.SetBiasAt(j, to.BiasAt(j)-n.rate*errVec[j])
		}
	}
	return nil
}

// Train runs exactly one gradient step per sample, in order, over a single
// pass of the sequence: set input and target, feed forward, backpropagate,
// update. There is no shuffling, batching, epoch loop or convergence check.
// A failed sample aborts the pass; partial error state cannot be resumed.
func (n *Network) Train(samples []Sample) error {
	for pass, s := range samples {
		if err := n.SetInput(s.Inputs); err != nil {
			return fmt.Errorf("network: sample %d: %w", pass, err)
		}
		if err := n.SetTarget(s.Targets); err != nil {
			return fmt.Errorf("network: sample %d: %w", pass, err)
		}

		fmt.Fprintf(n.out, "(PASS : %d)\n", pass)
		if err := n.FeedForward(); err != nil {
			return fmt.Errorf("network: sample %d: %w", pass, err)
		}
		n.PrintTo(n.out)
		for _, target := range s.Targets {
			fmt.Fprintf(n.out, "\t(Target: %g)\n\n", target)
		}

		n.ClearErrors()
		if err := n.BackPropagate(); err != nil {
			return fmt.Errorf("network: sample %d: %w", pass, err)
		}
		if err := n.Update(); err != nil {
			return fmt.Errorf("network: sample %d: %w", pass, err)
		}
	}
	return nil
}

// Output returns the activations of the output layer.
func (n *Network) Output() []float64 {
	return n.layers[len(n.layers)-1].Activations()
}

// NumLayers returns the number of layers, input layer included.
func (n *Network) NumLayers() int { return len(n.layers) }

// LayerAt returns layer i. Panics if i is out of range.
func (n *Network) LayerAt(i int) *Layer {
	if i < 0 || i >= len(n.layers) {
		panic(fmt.Sprintf("network: layer index %d out of range [0, %d)", i, len(n.layers)))
	}
	return n.layers[i]
}

// Weights returns the weight matrices in forward order; Weights()[k]
// connects layer k to layer k+1. The matrices are live, not copies.
func (n *Network) Weights() []*linalg.Matrix { return n.weights }

// Errors returns the error vectors of the most recent backpropagation, in
// reverse layer order (index 0 = output layer).
func (n *Network) Errors() [][]float64 { return n.errs }

// PrintTo writes one labeled line per layer: the input layer's raw inputs,
// then each subsequent layer's activations.
func (n *Network) PrintTo(w io.Writer) {
	for i, layer := range n.layers {
		switch {
		case i == 0:
			fmt.Fprint(w, "INPUT LAYER:")
			linalg.Fprint(w, layer.Inputs())
		case i == len(n.layers)-1:
			fmt.Fprint(w, "OUTPUT LAYER:")
			linalg.Fprint(w, layer.Activations())
		default:
			fmt.Fprintf(w, "LAYER %d:", i)
			linalg.Fprint(w, layer.Activations())
		}
	}
	fmt.Fprintln(w)
}

// biasDist returns a draw function over the same fixed uniform range used
// for the weights.
func biasDist(src rand.Source) func() float64 {
	dist := distuv.Uniform{Min: linalg.WeightMin, Max: linalg.WeightMax, Src: src}
	return dist.Rand
}
