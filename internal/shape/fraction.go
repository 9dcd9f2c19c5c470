package shape

import "math/big"

// Fraction is an exact rational number, used for shape multipliers (stride
// and upsample ratios) where floating point would make stripe-shape
// rounding non-reproducible at the boundary. See DESIGN.md for why this is
// one of the places the standard library substitutes for a pack dependency.
type Fraction struct {
	r *big.Rat
}

// NewFraction builds num/den, panicking on a zero denominator: a zero
// denominator can only arise from a programmer error constructing a
// multiplier table, never from data the compiler observes at runtime.
func NewFraction(num, den int64) Fraction {
	if den == 0 {
		panic("shape: zero-denominator fraction")
	}
	return Fraction{r: big.NewRat(num, den)}
}

// One is the identity fraction 1/1.
func One() Fraction { return NewFraction(1, 1) }

// Mul returns the product of two fractions.
func (f Fraction) Mul(o Fraction) Fraction {
	out := new(big.Rat).Mul(f.r, o.r)
	return Fraction{r: out}
}

// Apply scales v by the fraction, rounding down (matches the original's
// integer-division semantics for shape multipliers applied to dimensions).
func (f Fraction) Apply(v uint32) uint32 {
	num := new(big.Int).Mul(big.NewInt(int64(v)), f.r.Num())
	den := f.r.Denom()
	q := new(big.Int).Quo(num, den)
	if q.Sign() < 0 {
		return 0
	}
	return uint32(q.Uint64())
}

// Inverse returns 1/f, used to derive an input dimension from an output
// dimension and the multiplier that scales input to output.
func (f Fraction) Inverse() Fraction {
	out := new(big.Rat).Inv(f.r)
	return Fraction{r: out}
}

// Float64 is exposed only for logging/diagnostics.
func (f Fraction) Float64() float64 {
	v, _ := f.r.Float64()
	return v
}

func (f Fraction) String() string { return f.r.RatString() }

// ShapeMultiplier describes how an MCE or PLE operation scales its input
// shape to its output shape along each dimension.
type ShapeMultiplier struct {
	H, W, C Fraction
}

// IdentityMultiplier is the multiplier for operations that do not resize.
func IdentityMultiplier() ShapeMultiplier {
	return ShapeMultiplier{H: One(), W: One(), C: One()}
}

// Compose combines two multipliers element-wise, as when an MCE op and a
// fused PLE op both scale the same tensor.
func (m ShapeMultiplier) Compose(o ShapeMultiplier) ShapeMultiplier {
	return ShapeMultiplier{
		H: m.H.Mul(o.H),
		W: m.W.Mul(o.W),
		C: m.C.Mul(o.C),
	}
}
