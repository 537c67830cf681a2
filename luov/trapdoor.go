package luov

import (
	"fmt"
)

// Column layout of a Q1 row (coordinate k):
//
//	[ Pk1 upper triangle, row-major: (0,0) (0,1) ... (0,v-1) (1,1) ... ]
//	[ Pk2 row-major: (0,0) ... (0,m-1) (1,0) ... (v-1,m-1)               ]
//
// Q2 rows hold the oil-oil upper triangle with the same convention.

// Get the v x v upper-triangular vinegar-vinegar matrix of coordinate k.
func extract_Pk1(p *Params, Q1 *gfmat, k int) *gfmat {
	v := p.V
	row := Q1.row(k)
	P := new_gfmat(v, v)
	col := 0
	for i := 0; i < v; i++ {
		for j := i; j < v; j++ {
			P.set(i, j, row[col])
			col++
		}
	}
	return P
}

// Get the v x m vinegar-oil matrix of coordinate k.
func extract_Pk2(p *Params, Q1 *gfmat, k int) *gfmat {
	v, m := p.V, p.M
	off := v * (v + 1) / 2
	P := new_gfmat(v, m)
	copy(P.data, Q1.row(k)[off:off+v*m])
	return P
}

// Flatten the quadratic form of a square matrix into its upper triangle:
// entry (i,i) is kept, entry (i,j) with i < j receives a[i,j] + a[j,i].
// The destination must have exactly size*(size+1)/2 elements.
func flatten_upper(a *gfmat, dst []uint8) error {
	n := a.rows
	if err := a.expect("quadratic form", n, n); err != nil {
		return err
	}
	if err := expect_len("upper triangle", dst, n*(n+1)/2); err != nil {
		return err
	}
	col := 0
	for i := 0; i < n; i++ {
		dst[col] = a.at(i, i)
		col++
		for j := i + 1; j < n; j++ {
			dst[col] = gf_add(a.at(i, j), a.at(j, i))
			col++
		}
	}
	return nil
}

// Compile the oil-oil coefficients Q2 from Q1 and T. For each coordinate
// k, Pk3 = -T^t*Pk1*T + T^t*Pk2, and row k of Q2 is the flattened upper
// triangle of Pk3. With these coefficients, the public map composed with
// the change of variables (x, o) -> (x - T*o, o) has no oil-oil terms.
func find_Q2(f *gf, p *Params, Q1 *gfmat, T *gfmat) (*gfmat, error) {
	m, v := p.M, p.V
	if err := Q1.expect("Q1", m, p.Q1Cols()); err != nil {
		return nil, err
	}
	if err := T.expect("T", v, m); err != nil {
		return nil, err
	}
	Tt := gfmat_transpose(T)
	Q2 := new_gfmat(m, p.Q2Cols())
	for k := 0; k < m; k++ {
		Pk3, err := compute_Pk3(f, extract_Pk1(p, Q1, k),
			extract_Pk2(p, Q1, k), T, Tt)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", k, err)
		}
		if err := flatten_upper(Pk3, Q2.row(k)); err != nil {
			return nil, err
		}
	}
	return Q2, nil
}

// Pk3 = -T^t*Pk1*T + T^t*Pk2 (signs are irrelevant in characteristic 2).
func compute_Pk3(f *gf, Pk1 *gfmat, Pk2 *gfmat, T *gfmat, Tt *gfmat) (*gfmat, error) {
	t1, err := f.mat_mul(Tt, Pk1)
	if err != nil {
		return nil, err
	}
	t1, err = f.mat_mul(t1, T)
	if err != nil {
		return nil, err
	}
	t2, err := f.mat_mul(Tt, Pk2)
	if err != nil {
		return nil, err
	}
	return gfmat_add(t1, t2)
}
