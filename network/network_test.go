package network

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"feednet/linalg"
)

func newTestNetwork(t *testing.T, sizes []int, rate float64, seed uint64) *Network {
	t.Helper()
	n, err := New(Config{
		LayerSizes:   sizes,
		LearningRate: rate,
		Rand:         rand.New(rand.NewSource(seed)),
		Diagnostics:  io.Discard,
	})
	require.NoError(t, err)
	return n
}

func sig(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func TestNewAllocatesShapes(t *testing.T) {
	cases := [][]int{
		{2, 1},
		{2, 2, 1},
		{3, 4, 2, 1},
		{5, 7, 7, 3},
	}
	for _, sizes := range cases {
		n := newTestNetwork(t, sizes, 0.5, 42)

		require.Equal(t, len(sizes), n.NumLayers())
		require.Len(t, n.Weights(), len(sizes)-1)
		for k, w := range n.Weights() {
			assert.Equal(t, sizes[k+1], w.Rows(), "weights[%d] rows", k)
			assert.Equal(t, sizes[k], w.Cols(), "weights[%d] cols", k)
		}

		// Input layer carries no trainable bias
		for _, b := range n.LayerAt(0).Biases() {
			assert.Equal(t, 0.0, b)
		}
		// All other biases come from the configured uniform range
		for i := 1; i < n.NumLayers(); i++ {
			for _, b := range n.LayerAt(i).Biases() {
				assert.GreaterOrEqual(t, b, linalg.WeightMin)
				assert.Less(t, b, linalg.WeightMax)
			}
		}
	}
}

func TestNewDeterministicWithSeed(t *testing.T) {
	a := newTestNetwork(t, []int{3, 4, 2}, 0.5, 7)
	b := newTestNetwork(t, []int{3, 4, 2}, 0.5, 7)

	for k := range a.Weights() {
		wa, wb := a.Weights()[k], b.Weights()[k]
		for j := 0; j < wa.Rows(); j++ {
			for i := 0; i < wa.Cols(); i++ {
				assert.Equal(t, wa.At(j, i), wb.At(j, i))
			}
		}
	}
	for i := 1; i < a.NumLayers(); i++ {
		assert.Equal(t, a.LayerAt(i).Biases(), b.LayerAt(i).Biases())
	}
}

func TestNewInvalidArchitecture(t *testing.T) {
	cases := []Config{
		{LayerSizes: nil},
		{LayerSizes: []int{3}},
		{LayerSizes: []int{2, 0, 1}},
		{LayerSizes: []int{2, -3}},
		{LayerSizes: []int{2, 1}, LearningRate: -0.1},
	}
	for _, cfg := range cases {
		_, err := New(cfg)
		require.ErrorIs(t, err, ErrInvalidArchitecture, "%+v", cfg)
	}
}

func TestSetInputDimensionMismatch(t *testing.T) {
	n := newTestNetwork(t, []int{3, 2}, 0.5, 1)

	for _, size := range []int{0, 1, 2, 4, 9} {
		err := n.SetInput(make([]float64, size))
		require.ErrorIs(t, err, linalg.ErrShapeMismatch, "input length %d", size)
	}
	require.NoError(t, n.SetInput([]float64{1, 2, 3}))
}

func TestSetTargetDimensionMismatch(t *testing.T) {
	n := newTestNetwork(t, []int{3, 2}, 0.5, 1)

	for _, size := range []int{0, 1, 3, 5} {
		err := n.SetTarget(make([]float64, size))
		require.ErrorIs(t, err, linalg.ErrShapeMismatch, "target length %d", size)
	}
	require.NoError(t, n.SetTarget([]float64{1, 0}))
}

func TestSetInputWritesInputLayer(t *testing.T) {
	n := newTestNetwork(t, []int{2, 2}, 0.5, 1)
	require.NoError(t, n.SetInput([]float64{0.25, -1}))

	assert.Equal(t, []float64{0.25, -1}, n.LayerAt(0).Inputs())
	// Identity activation on the input layer
	assert.Equal(t, []float64{0.25, -1}, n.LayerAt(0).Activations())
}

func TestFeedForwardDeterministic(t *testing.T) {
	n := newTestNetwork(t, []int{2, 3, 1}, 0.5, 42)
	require.NoError(t, n.SetInput([]float64{1, 0.5}))

	require.NoError(t, n.FeedForward())
	first := n.Output()
	for i := 0; i < 3; i++ {
		require.NoError(t, n.FeedForward())
		assert.Equal(t, first, n.Output())
	}
}

func TestBackPropagateErrorOrdering(t *testing.T) {
	sizes := []int{3, 4, 2, 1}
	n := newTestNetwork(t, sizes, 0.5, 3)
	require.NoError(t, n.SetInput([]float64{0.1, 0.9, 0.4}))
	require.NoError(t, n.SetTarget([]float64{1}))
	require.NoError(t, n.FeedForward())

	n.ClearErrors()
	require.NoError(t, n.BackPropagate())

	errs := n.Errors()
	// One vector per non-input layer, output layer first
	require.Len(t, errs, len(sizes)-1)
	for i, e := range errs {
		assert.Len(t, e, sizes[len(sizes)-1-i], "errors[%d]", i)
	}
}

func TestBackPropagateWithoutTarget(t *testing.T) {
	n := newTestNetwork(t, []int{2, 1}, 0.5, 1)
	require.NoError(t, n.SetInput([]float64{1, 0}))
	require.NoError(t, n.FeedForward())

	n.ClearErrors()
	require.ErrorIs(t, n.BackPropagate(), ErrNoTarget)
}

// fix221 pins a 2-2-1 network to known weights and biases.
func fix221(t *testing.T, rate float64) (*Network, [2][2]float64, [2]float64, [2]float64, float64) {
	t.Helper()
	n := newTestNetwork(t, []int{2, 2, 1}, rate, 42)

	w0 := [2][2]float64{{0.15, 0.20}, {0.25, 0.30}}
	w1 := [2]float64{0.40, 0.45}
	b1 := [2]float64{0.35, 0.35}
	b2 := 0.60

	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			n.Weights()[0].Set(j, i, w0[j][i])
		}
		n.Weights()[1].Set(0, j, w1[j])
		n.LayerAt(1).SetBiasAt(j, b1[j])
	}
	n.LayerAt(2).SetBiasAt(0, b2)

	return n, w0, b1, w1, b2
}

func TestTrainSingleStepReducesLoss(t *testing.T) {
	n, _, _, _, _ := fix221(t, 0.1)
	sample := Sample{Inputs: []float64{1, 0}, Targets: []float64{1}}

	loss := func() float64 {
		require.NoError(t, n.SetInput(sample.Inputs))
		require.NoError(t, n.FeedForward())
		diff := n.Output()[0] - sample.Targets[0]
		return diff * diff
	}

	before := loss()
	require.NoError(t, n.Train([]Sample{sample}))
	after := loss()

	assert.Less(t, after, before)
}

// One full train pass over a single hand-computed sample, asserted value by
// value: forward activations, the error vectors, the updated weight matrices
// and the updated biases.
func TestTrainEndToEnd221(t *testing.T) {
	const rate = 0.5
	n, w0, b1, w1, b2 := fix221(t, rate)

	input := []float64{1.0, 0.0}
	target := 1.0

	// Forward pass
	in1 := [2]float64{
		w0[0][0]*input[0] + w0[0][1]*input[1],
		w0[1][0]*input[0] + w0[1][1]*input[1],
	}
	a1 := [2]float64{sig(in1[0] + b1[0]), sig(in1[1] + b1[1])}
	d1 := [2]float64{a1[0] * (1 - a1[0]), a1[1] * (1 - a1[1])}
	in2 := w1[0]*a1[0] + w1[1]*a1[1]
	a2 := sig(in2 + b2)
	d2 := a2 * (1 - a2)

	// Backpropagation under the quadratic cost
	e2 := (a2 - target) * d2
	e1 := [2]float64{w1[0] * e2 * d1[0], w1[1] * e2 * d1[1]}

	// SGD update. Weights between the input layer and the hidden layer use
	// the raw input activations; updating a hidden bias recomputes that
	// unit's activation, so the output-side weight update sees the hidden
	// activations under the new biases.
	var w0New [2][2]float64
	var b1New, a1New [2]float64
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			w0New[j][i] = w0[j][i] - rate*input[i]*e1[j]
		}
		b1New[j] = b1[j] - rate*e1[j]
		a1New[j] = sig(in1[j] + b1New[j])
	}
	w1New := [2]float64{w1[0] - rate*a1New[0]*e2, w1[1] - rate*a1New[1]*e2}
	b2New := b2 - rate*e2

	require.NoError(t, n.Train([]Sample{{Inputs: input, Targets: []float64{target}}}))

	errs := n.Errors()
	require.Len(t, errs, 2)
	assert.InDelta(t, e2, errs[0][0], 1e-9)
	assert.InDelta(t, e1[0], errs[1][0], 1e-9)
	assert.InDelta(t, e1[1], errs[1][1], 1e-9)

	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			assert.InDelta(t, w0New[j][i], n.Weights()[0].At(j, i), 1e-9)
		}
		assert.InDelta(t, w1New[j], n.Weights()[1].At(0, j), 1e-9)
		assert.InDelta(t, b1New[j], n.LayerAt(1).BiasAt(j), 1e-9)
		assert.InDelta(t, a1New[j], n.LayerAt(1).Activations()[j], 1e-9)
	}
	assert.InDelta(t, b2New, n.LayerAt(2).BiasAt(0), 1e-9)
	// Updating the output bias recomputes the output activation against the
	// unchanged net input.
	assert.InDelta(t, sig(in2+b2New), n.Output()[0], 1e-9)
}

func TestTrainDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(Config{
		LayerSizes:   []int{2, 2, 1},
		LearningRate: 0.5,
		Rand:         rand.New(rand.NewSource(42)),
		Diagnostics:  &buf,
	})
	require.NoError(t, err)

	sample := Sample{Inputs: []float64{1, 0}, Targets: []float64{1}}
	require.NoError(t, n.Train([]Sample{sample, sample}))

	out := buf.String()
	assert.Contains(t, out, "(PASS : 0)")
	assert.Contains(t, out, "(PASS : 1)")
	assert.Contains(t, out, "INPUT LAYER:")
	assert.Contains(t, out, "LAYER 1:")
	assert.Contains(t, out, "OUTPUT LAYER:")
	assert.Contains(t, out, "(Target: 1)")
	assert.Contains(t, out, "ERRORS:")
}

func TestPrintToLabels(t *testing.T) {
	n := newTestNetwork(t, []int{2, 3, 3, 1}, 0.5, 42)
	require.NoError(t, n.SetInput([]float64{0.5, 0.25}))
	require.NoError(t, n.FeedForward())

	var buf bytes.Buffer
	n.PrintTo(&buf)

	out := buf.String()
	assert.Contains(t, out, "INPUT LAYER: 0.5, 0.25\n")
	assert.Contains(t, out, "LAYER 1:")
	assert.Contains(t, out, "LAYER 2:")
	assert.Contains(t, out, "OUTPUT LAYER:")
}

func TestTrainPropagatesSampleErrors(t *testing.T) {
	n := newTestNetwork(t, []int{2, 1}, 0.5, 1)

	err := n.Train([]Sample{{Inputs: []float64{1}, Targets: []float64{0}}})
	require.ErrorIs(t, err, linalg.ErrShapeMismatch)

	err = n.Train([]Sample{{Inputs: []float64{1, 0}, Targets: []float64{0, 1}}})
	require.ErrorIs(t, err, linalg.ErrShapeMismatch)
}
