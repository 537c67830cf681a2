package luov

import (
	"fmt"

	sha3 "golang.org/x/crypto/sha3"
)

// Squeeze engine over SHAKE.
//
// A seed is absorbed once. Each squeeze works on a copy of the absorbed
// state, extended with a length-prefixed domain tag, so that:
//   - squeezing under a given tag does not depend on what was squeezed
//     under other tags;
//   - squeezing the same tag again yields the same output (a shorter
//     squeeze is a prefix of a longer one).

// Domain tags.
const (
	tag_public_seed = "public_seed"
	tag_T           = "T"
	tag_public_map  = "public_map"
)

// Largest number of bits a single squeeze may produce.
const xof_max_bits = 1 << 30

func (x XOF) new_shake() sha3.ShakeHash {
	if x == SHAKE128 {
		return sha3.NewShake128()
	}
	return sha3.NewShake256()
}

type sponge struct {
	st sha3.ShakeHash
}

// Absorb a seed into a fresh sponge.
func absorb(x XOF, seed []byte) *sponge {
	st := x.new_shake()
	st.Write(seed)
	return &sponge{st: st}
}

func (s *sponge) tagged(tag string) sha3.ShakeHash {
	h := s.st.Clone()
	var hb [1]byte
	hb[0] = uint8(len(tag))
	h.Write(hb[:])
	h.Write([]byte(tag))
	return h
}

// Squeeze exactly nbits bits under the provided domain tag.
func (s *sponge) squeeze(tag string, nbits int) (*bitstream, error) {
	if nbits < 0 || nbits > xof_max_bits {
		return nil, fmt.Errorf("%w: %d bits requested under tag %q",
			ErrInsufficientOutput, nbits, tag)
	}
	buf := make([]byte, (nbits+7)>>3)
	s.tagged(tag).Read(buf)
	return new_bitstream(buf, nbits), nil
}

// Squeeze exactly n bytes under the provided domain tag.
func (s *sponge) squeeze_bytes(tag string, n int) ([]byte, error) {
	bs, err := s.squeeze(tag, n<<3)
	if err != nil {
		return nil, err
	}
	return bs.buf, nil
}

// A finite sequence of bits, read MSB-first from each byte.
type bitstream struct {
	buf   []byte
	nbits int
	pos   int
}

func new_bitstream(buf []byte, nbits int) *bitstream {
	return &bitstream{buf: buf, nbits: nbits}
}

// Number of bits not read yet.
func (b *bitstream) remaining() int {
	return b.nbits - b.pos
}

// Read the next k bits (k <= 8) as an integer, first bit most
// significant.
func (b *bitstream) next_bits(k int) (uint8, error) {
	if k > b.remaining() {
		return 0, fmt.Errorf("%w: bitstream exhausted (%d bits left, %d needed)",
			ErrShapeMismatch, b.remaining(), k)
	}
	x := uint8(0)
	for i := 0; i < k; i++ {
		p := b.pos + i
		x = (x << 1) | ((b.buf[p>>3] >> (7 - uint(p&7))) & 1)
	}
	b.pos += k
	return x, nil
}

// Fill dst with values of k bits each.
func (b *bitstream) read_into(dst []uint8, k int) error {
	if len(dst)*k > b.remaining() {
		return fmt.Errorf("%w: bitstream has %d bits left, %d needed",
			ErrShapeMismatch, b.remaining(), len(dst)*k)
	}
	for i := range dst {
		dst[i], _ = b.next_bits(k)
	}
	return nil
}
