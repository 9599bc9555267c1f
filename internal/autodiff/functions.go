package autodiff

// Add returns a + b with broadcasting.
func Add(a, b Variable) (Variable, error) {
	return apply(OpAdd, a, b)
}

// Sub returns a - b with broadcasting.
func Sub(a, b Variable) (Variable, error) {
	return apply(OpSubtract, a, b)
}

// Mul returns the elementwise product a * b with broadcasting.
func Mul(a, b Variable) (Variable, error) {
	return apply(OpMultiply, a, b)
}

// MatMul returns the batched matrix product a @ b.
func MatMul(a, b Variable) (Variable, error) {
	return apply(OpMatMul, a, b)
}

// Sum returns the sum of every element of x as a scalar.
func Sum(x Variable) (Variable, error) {
	return apply(OpSum, x)
}

// ReLU returns max(x, 0) elementwise.
func ReLU(x Variable) (Variable, error) {
	return apply(OpReLU, x)
}

func apply(kind OpKind, inputs ...Variable) (Variable, error) {
	op := NewOperator(kind)
	out, err := op.Apply(inputs...)
	if err != nil {
		return Variable{}, err
	}
	return newResult(out, op), nil
}
