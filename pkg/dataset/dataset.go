package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strings"
)

var (
	ErrEmptyTable     = errors.New("table has no rows")
	ErrColumnNotFound = errors.New("column not found")
	ErrBadRatio       = errors.New("split ratio should be between 0 and 1, exclusive")
)

// Table is an in-memory tabular dataset, read from/written to CSV.
//
// All values are kept as strings. Rows are independent of each other
// and the whole table is assumed to fit in memory.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) Equal(o Table) bool {
	if len(t.Header) != len(o.Header) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i, h := range t.Header {
		if h != o.Header[i] {
			return false
		}
	}
	for i, r := range t.Rows {
		if len(r) != len(o.Rows[i]) {
			return false
		}
		for j, v := range r {
			if v != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

// Load reads a CSV with a header row.
//
// Every row should have as many fields as the header;
// otherwise csv.Reader reports an error.
func Load(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("%w: missing header", ErrEmptyTable)
		}
		return Table{}, err
	}

	rows := [][]string{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, rec)
	}

	return Table{Header: header, Rows: rows}, nil
}

func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	return Load(f)
}

// Write writes the table as CSV, header first.
func (t Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (t Table) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return t.Write(f)
}

// Split shuffles rows with the given seed and cuts them in two tables.
//
// The first table gets round(ratio * len(rows)) rows, the second the rest.
// Every input row lands in exactly one of the outputs.
// Same seed, same split.
func (t Table) Split(ratio float64, seed int64) (Table, Table, error) {
	if ratio <= 0 || 1 <= ratio {
		return Table{}, Table{}, fmt.Errorf("%w: %f", ErrBadRatio, ratio)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(t.Rows))

	cut := int(math.Round(ratio * float64(len(t.Rows))))

	first := Table{Header: t.Header, Rows: make([][]string, 0, cut)}
	second := Table{Header: t.Header, Rows: make([][]string, 0, len(t.Rows)-cut)}
	for nth, idx := range perm {
		if nth < cut {
			first.Rows = append(first.Rows, t.Rows[idx])
		} else {
			second.Rows = append(second.Rows, t.Rows[idx])
		}
	}

	return first, second, nil
}

// ColumnIndex finds the index of the named column in the header.
func (t Table) ColumnIndex(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// PopColumn removes the named column from the table.
//
// It returns the table without the column and the removed values,
// in row order. The receiver is not modified.
func (t Table) PopColumn(name string) (Table, []string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return Table{}, nil, err
	}

	header := make([]string, 0, len(t.Header)-1)
	header = append(header, t.Header[:idx]...)
	header = append(header, t.Header[idx+1:]...)

	values := make([]string, len(t.Rows))
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		values[i] = r[idx]
		row := make([]string, 0, len(r)-1)
		row = append(row, r[:idx]...)
		row = append(row, r[idx+1:]...)
		rows[i] = row
	}

	return Table{Header: header, Rows: rows}, values, nil
}

// EncodeBatches encodes rows (without header) into text/csv payloads,
// at most batchSize rows each, keeping row order over the batches.
func (t Table) EncodeBatches(batchSize int) ([]string, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size should be positive: %d", batchSize)
	}

	batches := []string{}
	for from := 0; from < len(t.Rows); from += batchSize {
		to := from + batchSize
		if len(t.Rows) < to {
			to = len(t.Rows)
		}

		sb := new(strings.Builder)
		cw := csv.NewWriter(sb)
		if err := cw.WriteAll(t.Rows[from:to]); err != nil {
			return nil, err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return nil, err
		}
		batches = append(batches, sb.String())
	}

	return batches, nil
}
