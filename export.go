package metagrid

import (
	"io"
	"strconv"

	"github.com/longtsing/metagrid/codec"
)

// ToMatrix stacks every element's numeric row into one matrix. Elements must
// implement ArrayElement; rows disagreeing on width fail with *ErrMismatch.
// This materializes the whole collection and is O(n); keep it out of hot
// filtering and ordering paths.
func ToMatrix(ix Index) ([][]float64, error) {
	n := ix.Len()
	out := make([][]float64, 0, n)
	width := -1

	for i := 0; i < n; i++ {
		e, err := ix.Get(i)
		if err != nil {
			return nil, err
		}
		ae, ok := e.(ArrayElement)
		if !ok {
			return nil, notImplemented(e, "Values")
		}
		row, err := ae.Values()
		if err != nil {
			return nil, err
		}
		if width >= 0 && len(row) != width {
			return nil, &ErrMismatch{
				Property: "row width",
				Want:     width,
				Got:      len(row),
				Detail:   "element " + strconv.Itoa(i),
			}
		}
		width = len(row)
		out = append(out, row)
	}
	return out, nil
}

// Tensor is a dense numeric representation of a collection: row-major data
// plus a shape.
type Tensor struct {
	Data  []float64
	Shape []int
}

// ToTensor converts the collection into a dense tensor by stacking rows.
// Like ToMatrix this is an O(n) materializing operation.
func ToTensor(ix Index) (*Tensor, error) {
	rows, err := ToMatrix(ix)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Tensor{Shape: []int{0, 0}}, nil
	}

	width := len(rows[0])
	data := make([]float64, 0, len(rows)*width)
	for _, row := range rows {
		data = append(data, row...)
	}
	return &Tensor{Data: data, Shape: []int{len(rows), width}}, nil
}

// At returns the tensor value at row i, column j.
func (t *Tensor) At(i, j int) float64 {
	return t.Data[i*t.Shape[1]+j]
}

// WriteRecords streams every element's metadata as one encoded line per
// element (JSON lines with the default codec). When keys is empty, elements
// must implement MetadataLister.
func WriteRecords(w io.Writer, ix Index, keys []string, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}

	for i := 0; i < ix.Len(); i++ {
		e, err := ix.Get(i)
		if err != nil {
			return err
		}

		var dic map[string]any
		if len(keys) > 0 {
			dic = make(map[string]any, len(keys))
			for _, k := range keys {
				if v := e.Metadata(k); v != nil {
					dic[k] = v
				}
			}
		} else {
			ml, ok := e.(MetadataLister)
			if !ok {
				return notImplemented(e, "MetadataAll")
			}
			dic = ml.MetadataAll()
		}

		b, err := c.Marshal(dic)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
