package clustering

import (
	"fmt"
	"math"
)

// Matching solves the assignment problem on a square integer cost matrix
// with the O(N^3) Hungarian method. Rows are called x, columns y.
type Matching struct {
	n          int
	maxMatch   int
	cost       CostMatrix
	maxElement int
	minimize   bool
	err        error

	lx, ly        []int
	xy, yx        []int
	slack, slackx []int
	prev          []int
	s, t          []bool
}

func NewMatching() *Matching {
	return &Matching{}
}

// NewIdentityMatching pairs row i with column i, every pair costing cost.
func NewIdentityMatching(n int, cost int) *Matching {
	m := &Matching{n: n, cost: NewCostMatrix(n, n)}
	m.xy = make([]int, n)
	m.yx = make([]int, n)
	for i := 0; i < n; i++ {
		m.xy[i] = i
		m.yx[i] = i
		for j := 0; j < n; j++ {
			m.cost.Set(i, j, cost)
		}
	}
	return m
}

func (m *Matching) N() int { return m.n }

// Err is set when the last Hungarian call rejected its input.
func (m *Matching) Err() error { return m.err }

func (m *Matching) MatchedY(x int) int { return m.xy[x] }
func (m *Matching) MatchedX(y int) int { return m.yx[y] }

// Cost returns the entry of the matrix given to Hungarian.
func (m *Matching) Cost(x, y int) int {
	if m.minimize {
		return m.maxElement - m.cost.At(x, y)
	}
	return m.cost.At(x, y)
}

// Hungarian finds the optimal perfect matching of costMatrix, maximizing the
// total unless minimize is set. It returns the summed original cost of the
// pairs of the first min(N, maxN) rows.
func (m *Matching) Hungarian(costMatrix CostMatrix, maxN int, minimize bool) int {
	m.xy = nil
	m.yx = nil
	m.err = nil
	m.n = 0
	if costMatrix.Rows() != costMatrix.Cols() {
		m.err = fmt.Errorf("%w: %dx%d", ErrNonSquareMatrix, costMatrix.Rows(), costMatrix.Cols())
		logger.Error(fmt.Sprintf("hungarian: need square matrix as input: %v", m.err))
		return 0
	}
	if costMatrix.Cols() == 0 {
		return 0
	}

	m.minimize = minimize
	m.n = costMatrix.Cols()
	m.cost = NewCostMatrix(m.n, m.n)
	m.maxElement = 0
	if minimize {
		m.maxElement = costMatrix.Max()
	}
	for x := 0; x < m.n; x++ {
		for y := 0; y < m.n; y++ {
			if minimize {
				m.cost.Set(x, y, m.maxElement-costMatrix.At(x, y))
			} else {
				m.cost.Set(x, y, costMatrix.At(x, y))
			}
		}
	}

	m.init()
	for m.maxMatch < m.n {
		m.augment()
	}

	total := 0
	for x := 0; x < min(m.n, maxN); x++ {
		total += costMatrix.At(x, m.xy[x])
	}
	return total
}

func (m *Matching) init() {
	n := m.n
	m.maxMatch = 0
	m.xy = filled(n, -1)
	m.yx = filled(n, -1)
	m.lx = make([]int, n)
	m.ly = make([]int, n)
	m.slack = make([]int, n)
	m.slackx = make([]int, n)
	m.prev = make([]int, n)
	m.s = make([]bool, n)
	m.t = make([]bool, n)
	for x := 0; x < n; x++ {
		m.lx[x] = m.cost.At(x, 0)
		for y := 1; y < n; y++ {
			m.lx[x] = max(m.lx[x], m.cost.At(x, y))
		}
	}
}

func (m *Matching) updateLabels() {
	delta := math.MaxInt
	for y := 0; y < m.n; y++ {
		if !m.t[y] {
			delta = min(delta, m.slack[y])
		}
	}
	for x := 0; x < m.n; x++ {
		if m.s[x] {
			m.lx[x] -= delta
		}
	}
	for y := 0; y < m.n; y++ {
		if m.t[y] {
			m.ly[y] += delta
		} else {
			m.slack[y] -= delta
		}
	}
}

func (m *Matching) addToTree(x, prevx int) {
	m.s[x] = true
	m.prev[x] = prevx
	for y := 0; y < m.n; y++ {
		if d := m.lx[x] + m.ly[y] - m.cost.At(x, y); d < m.slack[y] {
			m.slack[y] = d
			m.slackx[y] = x
		}
	}
}

// augment grows the matching by one pair along an augmenting path of the
// equality graph, relabelling when the alternating tree is exhausted.
func (m *Matching) augment() {
	n := m.n
	q := make([]int, n)
	wr, rd := 0, 0
	root := 0
	for i := 0; i < n; i++ {
		m.s[i] = false
		m.t[i] = false
		m.prev[i] = -1
	}
	for x := 0; x < n; x++ {
		if m.xy[x] == -1 {
			root = x
			q[wr] = x
			wr++
			m.prev[x] = -2
			m.s[x] = true
			break
		}
	}
	for y := 0; y < n; y++ {
		m.slack[y] = m.lx[root] + m.ly[y] - m.cost.At(root, y)
		m.slackx[y] = root
	}

	x, y := 0, 0
	found := false
	for !found {
		for rd < wr && !found {
			x = q[rd]
			rd++
			for y = 0; y < n; y++ {
				if m.cost.At(x, y) == m.lx[x]+m.ly[y] && !m.t[y] {
					if m.yx[y] == -1 {
						found = true
						break
					}
					m.t[y] = true
					q[wr] = m.yx[y]
					wr++
					m.addToTree(m.yx[y], x)
				}
			}
		}
		if found {
			break
		}

		m.updateLabels()
		wr, rd = 0, 0
		for y = 0; y < n; y++ {
			if !m.t[y] && m.slack[y] == 0 {
				if m.yx[y] == -1 {
					x = m.slackx[y]
					found = true
					break
				}
				m.t[y] = true
				if !m.s[m.yx[y]] {
					q[wr] = m.yx[y]
					wr++
					m.addToTree(m.yx[y], m.slackx[y])
				}
			}
		}
	}

	m.maxMatch++
	for cx, cy := x, y; cx != -2; {
		ty := m.xy[cx]
		m.yx[cy] = cx
		m.xy[cx] = cy
		cx, cy = m.prev[cx], ty
	}
}

func filled(n, value int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = value
	}
	return s
}
