package clustering

import (
	"fmt"
	"strings"
)

// CostMatrix is a dense row-major integer matrix. Rows are U bundles and
// columns V bundles when used for U-V matching.
type CostMatrix struct {
	rows, cols int
	data       [][]int
}

func NewCostMatrix(rows, cols int) CostMatrix {
	data := make([][]int, rows)
	for i := range data {
		data[i] = make([]int, cols)
	}
	return CostMatrix{rows: rows, cols: cols, data: data}
}

// CostMatrixFromRows copies rows into a matrix; every row must have the
// same length for the matrix to be usable.
func CostMatrixFromRows(rows [][]int) CostMatrix {
	cm := CostMatrix{rows: len(rows)}
	if len(rows) > 0 {
		cm.cols = len(rows[0])
	}
	cm.data = make([][]int, len(rows))
	for i, row := range rows {
		cm.data[i] = append([]int(nil), row...)
	}
	return cm
}

func (m CostMatrix) Rows() int { return m.rows }
func (m CostMatrix) Cols() int { return m.cols }

func (m CostMatrix) At(i, j int) int { return m.data[i][j] }

func (m CostMatrix) Set(i, j, value int) { m.data[i][j] = value }

func (m *CostMatrix) AddRow(fill int) {
	row := make([]int, m.cols)
	for j := range row {
		row[j] = fill
	}
	m.data = append(m.data, row)
	m.rows++
}

func (m *CostMatrix) AddColumn(fill int) {
	for i := range m.data {
		m.data[i] = append(m.data[i], fill)
	}
	m.cols++
}

// Square pads the matrix with fill until rows and columns agree.
func (m *CostMatrix) Square(fill int) {
	for m.rows < m.cols {
		m.AddRow(fill)
	}
	for m.cols < m.rows {
		m.AddColumn(fill)
	}
}

func (m CostMatrix) Max() int {
	largest := 0
	first := true
	for _, row := range m.data {
		for _, value := range row {
			if first || value > largest {
				largest = value
				first = false
			}
		}
	}
	return largest
}

func (m CostMatrix) String() string {
	var sb strings.Builder
	for _, row := range m.data {
		for j, value := range row {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%8d", value))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
