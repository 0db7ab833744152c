package network

import "math"

// Neuron is a single activation unit: an input value, a bias, and the
// activation and derivative of the squashing function at that input.
// Activation and derivative are recomputed whenever input or bias changes,
// so they are never stale.
type Neuron struct {
	input      float64
	activation float64
	derivative float64
	bias       float64
	inputUnit  bool
}

// NewInputNeuron returns an input-layer unit. Input units carry no trainable
// bias and pass their input through unchanged (identity activation), so the
// input layer holds raw feature values.
func NewInputNeuron(input float64) *Neuron {
	n := &Neuron{inputUnit: true}
	n.SetInput(input)
	return n
}

// NewNeuron returns a sigmoid unit with the given initial bias.
func NewNeuron(input, bias float64) *Neuron {
	n := &Neuron{bias: bias}
	n.SetInput(input)
	return n
}

// SetInput stores x and recomputes the activation and derivative.
func (n *Neuron) SetInput(x float64) {
	n.input = x
	n.recompute()
}

// SetBias stores b and recomputes the activation and derivative. Calling
// SetBias on an input unit has no effect on the activation, which stays the
// identity of the input.
func (n *Neuron) SetBias(b float64) {
	n.bias = b
	n.recompute()
}

func (n *Neuron) recompute() {
	if n.inputUnit {
		n.activation = n.input
		n.derivative = 1
		return
	}
	n.activation = sigmoid(n.input + n.bias)
	n.derivative = n.activation * (1 - n.activation)
}

// Input returns the most recently set input value.
func (n *Neuron) Input() float64 { return n.input }

// Activation returns the activation at the current input and bias.
func (n *Neuron) Activation() float64 { return n.activation }

// Derivative returns the derivative of the activation at the current input
// and bias.
func (n *Neuron) Derivative() float64 { return n.derivative }

// Bias returns the current bias.
func (n *Neuron) Bias() float64 { return n.bias }

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
