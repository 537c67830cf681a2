package luov

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// Encode values with a fixed number of bits (1 to 8) per value, first
// value in the most significant bits of the first byte. Unused bits in
// the last byte are set to zero. All values MUST fit on nbits bits. The
// destination must have room for exactly ceil(len(src)*nbits/8) bytes;
// the number of written bytes is returned.
func pack_bits(src []uint8, nbits int, dst []byte) int {
	acc := uint32(0)
	acc_len := 0
	j := 0
	for _, x := range src {
		acc = (acc << nbits) | uint32(x)
		acc_len += nbits
		for acc_len >= 8 {
			acc_len -= 8
			dst[j] = uint8(acc >> acc_len)
			j++
		}
	}
	if acc_len > 0 {
		dst[j] = uint8(acc << (8 - acc_len))
		j++
	}
	return j
}

// Decode values with a fixed number of bits per value (see pack_bits()).
// The source must contain exactly the needed number of bytes, and the
// unused bits of the last byte must be zero.
func unpack_bits(src []byte, nbits int, dst []uint8) error {
	needed := (len(dst)*nbits + 7) >> 3
	if len(src) != needed {
		return errors.New("wrong encoded length")
	}
	mask := (uint32(1) << nbits) - 1
	acc := uint32(0)
	acc_len := 0
	j := 0
	for i := 0; i < needed; i++ {
		acc = (acc << 8) | uint32(src[i])
		acc_len += 8
		for acc_len >= nbits && j < len(dst) {
			acc_len -= nbits
			dst[j] = uint8((acc >> acc_len) & mask)
			j++
		}
	}
	if (acc & ((uint32(1) << acc_len) - 1)) != 0 {
		return errors.New("non-zero padding bits")
	}
	return nil
}

// Encode a public key: public seed, then Q2 at one bit per coefficient.
func encode_public_key(p *Params, public_seed []byte, Q2 *gfmat) ([]byte, error) {
	if err := expect_len("public seed", public_seed, p.SeedSize); err != nil {
		return nil, err
	}
	if err := Q2.expect("Q2", p.M, p.Q2Cols()); err != nil {
		return nil, err
	}
	for _, x := range Q2.data {
		if x > 1 {
			return nil, fmt.Errorf("%w: non-binary Q2 coefficient",
				ErrShapeMismatch)
		}
	}
	packed := make([]byte, (len(Q2.data)+7)>>3)
	pack_bits(Q2.data, 1, packed)

	b := cryptobyte.NewFixedBuilder(make([]byte, 0, p.PublicKeySize()))
	b.AddBytes(public_seed)
	b.AddBytes(packed)
	return b.Bytes()
}

// Decode a public key into the public seed and Q2.
func decode_public_key(p *Params, pkey []byte) ([]byte, *gfmat, error) {
	if len(pkey) != p.PublicKeySize() {
		return nil, nil, fmt.Errorf("%w: %d bytes, expected %d",
			ErrMalformedPublicKey, len(pkey), p.PublicKeySize())
	}
	in := cryptobyte.String(pkey)
	var seed, packed []byte
	if !in.ReadBytes(&seed, p.SeedSize) ||
		!in.ReadBytes(&packed, p.PublicKeySize()-p.SeedSize) ||
		!in.Empty() {
		return nil, nil, ErrMalformedPublicKey
	}
	Q2 := new_gfmat(p.M, p.Q2Cols())
	if err := unpack_bits(packed, 1, Q2.data); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	return seed, Q2, nil
}

// Encode a signature: the n field elements of the core vector on R bits
// each, then the salt.
func encode_signature(p *Params, f *gf, s []uint8, salt []byte) ([]byte, error) {
	if err := expect_len("signature vector", s, p.N()); err != nil {
		return nil, err
	}
	if err := expect_len("salt", salt, SaltSize); err != nil {
		return nil, err
	}
	for _, x := range s {
		if !f.contains(x) {
			return nil, fmt.Errorf("%w: signature element out of field",
				ErrShapeMismatch)
		}
	}
	packed := make([]byte, (p.N()*int(p.R)+7)>>3)
	pack_bits(s, int(p.R), packed)

	b := cryptobyte.NewFixedBuilder(make([]byte, 0, p.SignatureSize()))
	b.AddBytes(packed)
	b.AddBytes(salt)
	return b.Bytes()
}

// Decode a signature into its core vector and salt.
func decode_signature(p *Params, sig []byte) ([]uint8, []byte, error) {
	if len(sig) != p.SignatureSize() {
		return nil, nil, fmt.Errorf("%w: %d bytes, expected %d",
			ErrMalformedSignature, len(sig), p.SignatureSize())
	}
	in := cryptobyte.String(sig)
	var packed, salt []byte
	if !in.ReadBytes(&packed, p.SignatureSize()-SaltSize) ||
		!in.ReadBytes(&salt, SaltSize) ||
		!in.Empty() {
		return nil, nil, ErrMalformedSignature
	}
	s := make([]uint8, p.N())
	if err := unpack_bits(packed, int(p.R), s); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return s, salt, nil
}
