package luov

import (
	"fmt"
)

// Derivation of the key material from seeds. Everything here is
// deterministic: the same seed always yields the same matrices.

// Derive the public seed and the secret linear map T from the private
// seed. The private seed is absorbed once; the public seed and T are
// squeezed under distinct tags.
func derive_private(p *Params, private_seed []byte) ([]byte, *gfmat, error) {
	if len(private_seed) != p.SeedSize {
		return nil, nil, fmt.Errorf("%w: seed has %d bytes, expected %d",
			ErrMalformedPrivateKey, len(private_seed), p.SeedSize)
	}
	sp := absorb(p.XOF, private_seed)
	pub, err := sp.squeeze_bytes(tag_public_seed, p.SeedSize)
	if err != nil {
		return nil, nil, err
	}
	T, err := squeeze_T(p, sp)
	if err != nil {
		return nil, nil, err
	}
	return pub, T, nil
}

func derive_public_seed(p *Params, private_seed []byte) ([]byte, error) {
	pub, _, err := derive_private(p, private_seed)
	return pub, err
}

func derive_T(p *Params, private_seed []byte) (*gfmat, error) {
	_, T, err := derive_private(p, private_seed)
	return T, err
}

// T is v x m, binary, filled row-major from v*m bits.
func squeeze_T(p *Params, sp *sponge) (*gfmat, error) {
	bs, err := sp.squeeze(tag_T, p.V*p.M)
	if err != nil {
		return nil, err
	}
	T := new_gfmat(p.V, p.M)
	if err := bs.read_into(T.data, 1); err != nil {
		return nil, err
	}
	return T, nil
}

// Derive the key-independent part of the public map from the public seed:
// C (m), L (m x n) and Q1 (m x (v(v+1)/2 + v*m)), all binary, taken in
// that order from a single squeeze.
func derive_public_map(p *Params, public_seed []byte) (C []uint8, L *gfmat, Q1 *gfmat, err error) {
	if len(public_seed) != p.SeedSize {
		err = fmt.Errorf("%w: public seed has %d bytes, expected %d",
			ErrShapeMismatch, len(public_seed), p.SeedSize)
		return
	}
	nbits := p.public_map_bits()
	bs, err := absorb(p.XOF, public_seed).squeeze(tag_public_map, nbits)
	if err != nil {
		return
	}
	C = make([]uint8, p.M)
	L = new_gfmat(p.M, p.N())
	Q1 = new_gfmat(p.M, p.Q1Cols())
	for _, d := range [][]uint8{C, L.data, Q1.data} {
		if err = bs.read_into(d, 1); err != nil {
			return nil, nil, nil, err
		}
	}
	if bs.remaining() != 0 {
		err = fmt.Errorf("%w: %d unused public map bits",
			ErrShapeMismatch, bs.remaining())
		return nil, nil, nil, err
	}
	return
}
