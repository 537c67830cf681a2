package luov

import (
	"fmt"
	"sync"
)

// Arithmetic in GF(2^r), for 1 <= r <= 8.
//
// Elements are held in uint8 values, in polynomial basis: bit i is the
// coefficient of X^i. Addition is XOR; multiplication is carry-less
// multiplication modulo a fixed irreducible polynomial of degree r.
// Since the characteristic is 2, subtraction and negation are the same
// as addition and identity, respectively.

// Irreducible polynomials, indexed by degree.
var gf_modulus = [9]uint16{
	0,
	0x003, // X + 1
	0x007, // X^2 + X + 1
	0x00B, // X^3 + X + 1
	0x013, // X^4 + X + 1
	0x025, // X^5 + X^2 + 1
	0x043, // X^6 + X + 1
	0x083, // X^7 + X + 1
	0x11B, // X^8 + X^4 + X^3 + X + 1
}

// A binary field GF(2^r), with precomputed multiplication and inversion
// tables. Instances are immutable once built.
type gf struct {
	r    uint
	q    int // field size 2^r
	mulT []uint8
	invT []uint8
}

var (
	gf_cache      [9]*gf
	gf_cache_once [9]sync.Once
)

// Get the field GF(2^r). The tables are built on first use and shared
// afterwards.
func gf_for(r uint) (*gf, error) {
	if r < 1 || r > 8 {
		return nil, fmt.Errorf("%w: unsupported extension degree %d",
			ErrInvalidParams, r)
	}
	gf_cache_once[r].Do(func() {
		gf_cache[r] = new_gf(r)
	})
	return gf_cache[r], nil
}

func new_gf(r uint) *gf {
	q := 1 << r
	f := &gf{
		r:    r,
		q:    q,
		mulT: make([]uint8, q*q),
		invT: make([]uint8, q),
	}
	for a := 0; a < q; a++ {
		for b := 0; b < q; b++ {
			f.mulT[(a<<r)|b] = gf_mul_slow(r, uint8(a), uint8(b))
		}
	}
	for a := 1; a < q; a++ {
		for b := 1; b < q; b++ {
			if f.mulT[(a<<r)|b] == 1 {
				f.invT[a] = uint8(b)
				break
			}
		}
	}
	return f
}

// Carry-less product of a and b, reduced modulo the degree-r modulus.
func gf_mul_slow(r uint, a uint8, b uint8) uint8 {
	x := uint16(0)
	for i := uint(0); i < r; i++ {
		if (b>>i)&1 != 0 {
			x ^= uint16(a) << i
		}
	}
	mod := gf_modulus[r]
	for i := 2*r - 2; i >= r; i-- {
		if (x>>i)&1 != 0 {
			x ^= mod << (i - r)
		}
	}
	return uint8(x)
}

func gf_add(a uint8, b uint8) uint8 {
	return a ^ b
}

func (f *gf) mul(a uint8, b uint8) uint8 {
	return f.mulT[(uint(a)<<f.r)|uint(b)]
}

func (f *gf) inv(a uint8) (uint8, error) {
	if a == 0 {
		return 0, ErrDivisionByZero
	}
	return f.invT[a], nil
}

// Check that x is a valid element of this field.
func (f *gf) contains(x uint8) bool {
	return int(x) < f.q
}

// Dense row-major matrix over the field.
type gfmat struct {
	rows int
	cols int
	data []uint8
}

func new_gfmat(rows int, cols int) *gfmat {
	return &gfmat{rows: rows, cols: cols, data: make([]uint8, rows*cols)}
}

func (a *gfmat) at(i int, j int) uint8 {
	return a.data[i*a.cols+j]
}

func (a *gfmat) set(i int, j int, x uint8) {
	a.data[i*a.cols+j] = x
}

func (a *gfmat) row(i int) []uint8 {
	return a.data[i*a.cols : (i+1)*a.cols]
}

// Check that the matrix has exactly the expected dimensions.
func (a *gfmat) expect(what string, rows int, cols int) error {
	if a == nil || a.rows != rows || a.cols != cols ||
		len(a.data) != rows*cols {
		got := "nil"
		if a != nil {
			got = fmt.Sprintf("%dx%d", a.rows, a.cols)
		}
		return fmt.Errorf("%w: %s is %s, expected %dx%d",
			ErrShapeMismatch, what, got, rows, cols)
	}
	return nil
}

func expect_len(what string, x []uint8, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: %s has length %d, expected %d",
			ErrShapeMismatch, what, len(x), n)
	}
	return nil
}

// d <- d + x (element-wise). Lengths must match.
func gfvec_add_into(d []uint8, x []uint8) error {
	if err := expect_len("vector", x, len(d)); err != nil {
		return err
	}
	for i := range d {
		d[i] = gf_add(d[i], x[i])
	}
	return nil
}

func (f *gf) dot(x []uint8, y []uint8) (uint8, error) {
	if err := expect_len("dot operand", y, len(x)); err != nil {
		return 0, err
	}
	s := uint8(0)
	for i := range x {
		s = gf_add(s, f.mul(x[i], y[i]))
	}
	return s, nil
}

// Return a*x (x is a column vector).
func (f *gf) mat_vec(a *gfmat, x []uint8) ([]uint8, error) {
	if err := expect_len("matrix-vector operand", x, a.cols); err != nil {
		return nil, err
	}
	d := make([]uint8, a.rows)
	for i := 0; i < a.rows; i++ {
		d[i], _ = f.dot(a.row(i), x)
	}
	return d, nil
}

// Return x^t*a (x is a row vector).
func (f *gf) vec_mat(x []uint8, a *gfmat) ([]uint8, error) {
	if err := expect_len("vector-matrix operand", x, a.rows); err != nil {
		return nil, err
	}
	d := make([]uint8, a.cols)
	for i := 0; i < a.rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		ra := a.row(i)
		for j := range d {
			d[j] = gf_add(d[j], f.mul(xi, ra[j]))
		}
	}
	return d, nil
}

func (f *gf) mat_mul(a *gfmat, b *gfmat) (*gfmat, error) {
	if a.cols != b.rows {
		return nil, fmt.Errorf("%w: cannot multiply %dx%d by %dx%d",
			ErrShapeMismatch, a.rows, a.cols, b.rows, b.cols)
	}
	c := new_gfmat(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		rc := c.row(i)
		for k := 0; k < a.cols; k++ {
			x := a.at(i, k)
			if x == 0 {
				continue
			}
			rb := b.row(k)
			for j := range rc {
				rc[j] = gf_add(rc[j], f.mul(x, rb[j]))
			}
		}
	}
	return c, nil
}

func gfmat_add(a *gfmat, b *gfmat) (*gfmat, error) {
	if err := b.expect("addend", a.rows, a.cols); err != nil {
		return nil, err
	}
	c := new_gfmat(a.rows, a.cols)
	for i := range c.data {
		c.data[i] = gf_add(a.data[i], b.data[i])
	}
	return c, nil
}

func gfmat_transpose(a *gfmat) *gfmat {
	t := new_gfmat(a.cols, a.rows)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			t.set(j, i, a.at(i, j))
		}
	}
	return t
}

// Solve a*x = b for a square matrix a, using Gaussian elimination. The
// pivot for each column is the first row (at or below the diagonal) with
// a nonzero entry; if there is none, then the system does not have a
// unique solution and ErrSingularSystem is returned. Neither a nor b is
// modified.
func (f *gf) solve(a *gfmat, b []uint8) ([]uint8, error) {
	n := a.rows
	if err := a.expect("system matrix", n, n); err != nil {
		return nil, err
	}
	if err := expect_len("right-hand side", b, n); err != nil {
		return nil, err
	}

	// Augmented matrix [a | b].
	w := n + 1
	aug := new_gfmat(n, w)
	for i := 0; i < n; i++ {
		copy(aug.row(i)[:n], a.row(i))
		aug.set(i, n, b[i])
	}

	for col := 0; col < n; col++ {
		piv := -1
		for i := col; i < n; i++ {
			if aug.at(i, col) != 0 {
				piv = i
				break
			}
		}
		if piv < 0 {
			return nil, ErrSingularSystem
		}
		if piv != col {
			rp := aug.row(piv)
			rc := aug.row(col)
			for j := range rc {
				rp[j], rc[j] = rc[j], rp[j]
			}
		}

		// Normalize the pivot row.
		rc := aug.row(col)
		iv, err := f.inv(rc[col])
		if err != nil {
			return nil, err
		}
		for j := col; j < w; j++ {
			rc[j] = f.mul(rc[j], iv)
		}

		// Eliminate the column from all other rows.
		for i := 0; i < n; i++ {
			if i == col {
				continue
			}
			ri := aug.row(i)
			c := ri[col]
			if c == 0 {
				continue
			}
			for j := col; j < w; j++ {
				ri[j] = gf_add(ri[j], f.mul(c, rc[j]))
			}
		}
	}

	x := make([]uint8, n)
	for i := 0; i < n; i++ {
		x[i] = aug.at(i, n)
	}
	return x, nil
}
