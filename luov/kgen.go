package luov

import (
	"crypto/rand"
	"io"
)

// Generate a new key pair.
//
//	- p is the parameter set to use.
//	- rng is random source to use (nil to use the OS RNG).
//
// Output is the new key pair (private and public keys, both encoded). The
// private key is the private seed itself (p.SeedSize bytes); everything
// else is re-derived from it when signing. An error is reported if the
// parameter set is invalid, or if the random source fails.
func KeyGen(p *Params, rng io.Reader) (skey []byte, pkey []byte, err error) {
	if err = p.Validate(); err != nil {
		return
	}
	if rng == nil {
		rng = rand.Reader
	}
	seed := make([]byte, p.SeedSize)
	_, err = io.ReadFull(rng, seed)
	if err != nil {
		return
	}
	return keygen_inner(p, seed)
}

// Inner function; the parameters are assumed to be valid, and the output
// is deterministic for the provided seed.
func keygen_inner(p *Params, seed []byte) (skey []byte, pkey []byte, err error) {
	pkey, err = compile_public_key(p, seed)
	if err != nil {
		return nil, nil, err
	}
	skey = make([]byte, len(seed))
	copy(skey, seed)
	return
}

// Recompute the public key that matches a private key.
func PublicKeyFromPrivate(p *Params, skey []byte) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return compile_public_key(p, skey)
}

// Expand the private seed and compile Q2:
//
//	private seed -> (public seed, T)
//	public seed  -> (C, L, Q1)
//	(Q1, T)      -> Q2
func compile_public_key(p *Params, skey []byte) ([]byte, error) {
	f, err := gf_for(p.R)
	if err != nil {
		return nil, err
	}
	public_seed, T, err := derive_private(p, skey)
	if err != nil {
		return nil, err
	}
	_, _, Q1, err := derive_public_map(p, public_seed)
	if err != nil {
		return nil, err
	}
	Q2, err := find_Q2(f, p, Q1, T)
	if err != nil {
		return nil, err
	}
	return encode_public_key(p, public_seed, Q2)
}
