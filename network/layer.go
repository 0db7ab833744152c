package network

import "fmt"

// Layer is a fixed-size ordered sequence of neurons. The length is set at
// construction and never changes; unit index is meaningful and shared with
// the weight matrices on either side of the layer.
type Layer struct {
	neurons []*Neuron
}

// newLayer allocates a layer of size units. Input layers get identity units,
// all other layers get sigmoid units with a zero bias; the network randomizes
// non-input biases after construction.
func newLayer(size int, inputLayer bool) *Layer {
	l := &Layer{neurons: make([]*Neuron, size)}
	for i := range l.neurons {
		if inputLayer {
			l.neurons[i] = NewInputNeuron(0)
		} else {
			l.neurons[i] = NewNeuron(0, 0)
		}
	}
	return l
}

// Size returns the number of units in the layer.
func (l *Layer) Size() int { return len(l.neurons) }

func (l *Layer) checkIndex(idx int) {
	if idx < 0 || idx >= len(l.neurons) {
		panic(fmt.Sprintf("network: neuron index %d out of range [0, %d)", idx, len(l.neurons)))
	}
}

// SetInputAt sets the input of unit idx. The unit's activation and derivative
// are recomputed before SetInputAt returns. Panics if idx is out of range.
func (l *Layer) SetInputAt(idx int, v float64) {
	l.checkIndex(idx)
	l.neurons[idx].SetInput(v)
}

// SetBiasAt sets the bias of unit idx. The unit's activation and derivative
// are recomputed before SetBiasAt returns. Panics if idx is out of range.
func (l *Layer) SetBiasAt(idx int, v float64) {
	l.checkIndex(idx)
	l.neurons[idx].SetBias(v)
}

// BiasAt returns the bias of unit idx. Panics if idx is out of range.
func (l *Layer) BiasAt(idx int) float64 {
	l.checkIndex(idx)
	return l.neurons[idx].Bias()
}

// NeuronAt returns the unit at idx. Panics if idx is out of range.
func (l *Layer) NeuronAt(idx int) *Neuron {
	l.checkIndex(idx)
	return l.neurons[idx]
}

// Inputs returns a fresh slice of the unit inputs, in unit order.
func (l *Layer) Inputs() []float64 {
	out := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		out[i] = n.Input()
	}
	return out
}

// Activations returns a fresh slice of the unit activations, in unit order.
func (l *Layer) Activations() []float64 {
	out := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		out[i] = n.Activation()
	}
	return out
}

// Derivatives returns a fresh slice of the unit derivatives, in unit order.
func (l *Layer) Derivatives() []float64 {
	out := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		out[i] = n.Derivative()
	}
	return out
}

// Biases returns a fresh slice of the unit biases, in unit order.
func (l *Layer) Biases() []float64 {
	out := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		out[i] = n.Bias()
	}
	return out
}
