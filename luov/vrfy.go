package luov

import (
	"crypto/subtle"
	"fmt"
)

// Verify a signature.
//
//	- p is the parameter set
//	- pkey is the public key
//	- msg is the signed message
//	- sig is the signature to verify
//
// The returned boolean is true for a valid signature. A well-formed
// signature that does not match is reported as (false, nil); a signature
// or key that cannot be decoded is reported with an error wrapping
// ErrMalformedSignature or ErrMalformedPublicKey (the boolean is then
// false).
func Verify(p *Params, pkey []byte, msg []byte, sig []byte) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	f, err := gf_for(p.R)
	if err != nil {
		return false, err
	}

	// Decode everything before doing any computation.
	s, salt, err := decode_signature(p, sig)
	if err != nil {
		return false, err
	}
	public_seed, Q2, err := decode_public_key(p, pkey)
	if err != nil {
		return false, err
	}

	C, L, Q1, err := derive_public_map(p, public_seed)
	if err != nil {
		return false, err
	}
	h := hash_message(p, msg, salt)
	e, err := evaluate_public_map(f, p, C, L, Q1, Q2, s)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(e, h) == 1, nil
}

// Evaluate the public map at s:
//
//	e_k = C_k + (L*s)_k + sum_{i <= j} Q_k(i,j)*s_i*s_j
//
// where the coefficients Q_k(i,j) are read from row k of Q1 (vinegar-
// vinegar, then vinegar-oil) and row k of Q2 (oil-oil). The monomials
// s_i*s_j do not depend on k and are computed once, in column order.
func evaluate_public_map(f *gf, p *Params, C []uint8, L *gfmat,
	Q1 *gfmat, Q2 *gfmat, s []uint8) ([]uint8, error) {

	m, v, n := p.M, p.V, p.N()
	if err := expect_len("C", C, m); err != nil {
		return nil, err
	}
	if err := L.expect("L", m, n); err != nil {
		return nil, err
	}
	if err := Q1.expect("Q1", m, p.Q1Cols()); err != nil {
		return nil, err
	}
	if err := Q2.expect("Q2", m, p.Q2Cols()); err != nil {
		return nil, err
	}
	if err := expect_len("signature vector", s, n); err != nil {
		return nil, err
	}
	for _, x := range s {
		if !f.contains(x) {
			return nil, fmt.Errorf("%w: element out of field",
				ErrMalformedSignature)
		}
	}

	mono1 := make([]uint8, 0, p.Q1Cols())
	for i := 0; i < v; i++ {
		for j := i; j < v; j++ {
			mono1 = append(mono1, f.mul(s[i], s[j]))
		}
	}
	for i := 0; i < v; i++ {
		for j := 0; j < m; j++ {
			mono1 = append(mono1, f.mul(s[i], s[v+j]))
		}
	}
	mono2 := make([]uint8, 0, p.Q2Cols())
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			mono2 = append(mono2, f.mul(s[v+i], s[v+j]))
		}
	}

	e, err := f.mat_vec(L, s)
	if err != nil {
		return nil, err
	}
	for k := 0; k < m; k++ {
		q1, err := f.dot(Q1.row(k), mono1)
		if err != nil {
			return nil, err
		}
		q2, err := f.dot(Q2.row(k), mono2)
		if err != nil {
			return nil, err
		}
		e[k] = gf_add(gf_add(e[k], C[k]), gf_add(q1, q2))
	}
	return e, nil
}
