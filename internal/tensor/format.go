package tensor

import (
	"strconv"
	"strings"
)

const indentWidth = 3

// String returns a human-readable representation of the tensor: the shape on
// the first line, followed by one bracket level per axis.
//
//	(2, 3)
//	[
//	   [0, 1, 2],
//	   [3, 4, 5]
//	]
func (t *Tensor) String() string {
	if t.buf == nil {
		return "()\n[]"
	}

	var b strings.Builder
	b.WriteString(t.shape.String())
	b.WriteByte('\n')
	writeNested(&b, t.Data(), t.shape, 0)
	return b.String()
}

func writeNested(b *strings.Builder, data []float64, shape Shape, depth int) {
	b.WriteString(strings.Repeat(" ", indentWidth*depth))

	if len(shape) == 1 {
		b.WriteByte('[')
		for i, v := range data {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte(']')
		return
	}

	b.WriteString("[\n")
	chunk := len(data) / shape[0]
	for i := 0; i < shape[0]; i++ {
		writeNested(b, data[i*chunk:(i+1)*chunk], shape[1:], depth+1)
		if i < shape[0]-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(" ", indentWidth*depth))
	b.WriteByte(']')
}
