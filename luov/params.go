package luov

import (
	"fmt"
)

// Size of the salt appended to each signature, in bytes.
const SaltSize = 16

// Extendable-output function used for seed expansion and message hashing.
type XOF int

const (
	SHAKE128 XOF = 128
	SHAKE256 XOF = 256
)

func (x XOF) String() string {
	switch x {
	case SHAKE128:
		return "SHAKE128"
	case SHAKE256:
		return "SHAKE256"
	default:
		return fmt.Sprintf("XOF(%d)", int(x))
	}
}

// A parameter set.
//
//   - R is the extension degree of the field GF(2^R) (1 to 8).
//   - M is the number of oil variables (and of public equations).
//   - V is the number of vinegar variables.
//   - SeedSize is the size of the private and public seeds, in bytes.
//   - XOF selects the SHAKE variant.
//
// Parameter sets are plain values; the standard ones are provided as
// package variables and MUST NOT be modified.
type Params struct {
	Name     string
	R        uint
	M        int
	V        int
	SeedSize int
	XOF      XOF
}

// Standard parameter sets, for NIST security levels 1, 3 and 5.
var (
	LUOV_7_57_197 = &Params{
		Name: "LUOV-7-57-197", R: 7, M: 57, V: 197,
		SeedSize: 32, XOF: SHAKE128,
	}
	LUOV_7_83_283 = &Params{
		Name: "LUOV-7-83-283", R: 7, M: 83, V: 283,
		SeedSize: 32, XOF: SHAKE256,
	}
	LUOV_7_110_374 = &Params{
		Name: "LUOV-7-110-374", R: 7, M: 110, V: 374,
		SeedSize: 32, XOF: SHAKE256,
	}
)

// Get the standard parameter set for a security level (1, 3 or 5).
func ParamsForLevel(level int) (*Params, error) {
	switch level {
	case 1:
		return LUOV_7_57_197, nil
	case 3:
		return LUOV_7_83_283, nil
	case 5:
		return LUOV_7_110_374, nil
	default:
		return nil, fmt.Errorf("%w: no parameter set for security level %d",
			ErrInvalidParams, level)
	}
}

// Total number of variables (n = v + m).
func (p *Params) N() int {
	return p.V + p.M
}

// Number of columns of Q1: the v(v+1)/2 vinegar-vinegar coefficients
// followed by the v*m vinegar-oil coefficients.
func (p *Params) Q1Cols() int {
	return p.V*(p.V+1)/2 + p.V*p.M
}

// Number of columns of Q2 (oil-oil coefficients).
func (p *Params) Q2Cols() int {
	return p.M * (p.M + 1) / 2
}

// Number of bits squeezed for the public map (C, L and Q1, in that order).
func (p *Params) public_map_bits() int {
	return p.M + p.M*p.N() + p.M*p.Q1Cols()
}

// Validate the parameter tuple. All operations call this before doing
// anything else.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil parameter set", ErrInvalidParams)
	}
	if p.R < 1 || p.R > 8 {
		return fmt.Errorf("%w: extension degree %d out of range",
			ErrInvalidParams, p.R)
	}
	if p.M < 1 || p.V < 1 {
		return fmt.Errorf("%w: m=%d, v=%d", ErrInvalidParams, p.M, p.V)
	}
	if p.V <= p.M {
		return fmt.Errorf("%w: needs more vinegar than oil (m=%d, v=%d)",
			ErrInvalidParams, p.M, p.V)
	}
	if p.SeedSize < 16 {
		return fmt.Errorf("%w: seed size %d is too small",
			ErrInvalidParams, p.SeedSize)
	}
	if p.XOF != SHAKE128 && p.XOF != SHAKE256 {
		return fmt.Errorf("%w: unsupported XOF %v", ErrInvalidParams, p.XOF)
	}
	if p.public_map_bits() > xof_max_bits {
		return fmt.Errorf("%w: public map too large", ErrInvalidParams)
	}
	return nil
}

// Get the size of a private key, in bytes.
func (p *Params) PrivateKeySize() int {
	return p.SeedSize
}

// Get the size of a public key, in bytes: the public seed, then Q2 at
// one bit per coefficient.
func (p *Params) PublicKeySize() int {
	return p.SeedSize + (p.M*p.Q2Cols()+7)>>3
}

// Get the size of a signature, in bytes: n field elements of R bits
// each, then the salt.
func (p *Params) SignatureSize() int {
	return (p.N()*int(p.R)+7)>>3 + SaltSize
}

func (p *Params) String() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("LUOV-%d-%d-%d", p.R, p.M, p.V)
}
