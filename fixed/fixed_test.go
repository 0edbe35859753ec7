package fixed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func near(t *testing.T, expected float64, got Fixed, tolerance float64) {
	t.Helper()
	require.InDelta(t, expected, got.Float(), tolerance, "got %v", got)
}

func TestConversions(t *testing.T) {
	require.Equal(t, One, FromInt(1))
	require.Equal(t, Half, FromFloat(0.5))
	require.Equal(t, int32(-2), FromFloat(-1.5).Int())
	require.Equal(t, Fixed(math.MaxInt32), FromFloat(1e9))
	require.Equal(t, Fixed(math.MinInt32), FromFloat(-1e9))
	require.Equal(t, "2.5", FromFloat(2.5).String())
}

func TestArithmetic(t *testing.T) {
	a := FromFloat(2.5)
	b := FromFloat(4)
	require.Equal(t, FromInt(10), Mul(a, b))
	require.Equal(t, FromFloat(0.625), Div(a, b))
	require.Equal(t, Zero, Div(a, 0))
	require.Equal(t, Zero, Rem(a, 0))
	require.Equal(t, FromInt(3), Ceil(a))
	require.Equal(t, FromInt(2), Floor(a))
	require.Equal(t, FromInt(-3), Floor(FromFloat(-2.5)))
	require.Equal(t, Half, FromFloat(-2.5).Frac())
	require.Equal(t, -One, Sign(FromFloat(-0.1)))
	require.Equal(t, One, Saturate(FromInt(7)))
}

func TestMod(t *testing.T) {
	tests := []struct {
		x, y     float64
		expected float64
	}{
		{7, 3, 1},
		{-7, 3, -1},
		{5.5, 2, 1.5},
		{-1.5, 1, 0.5},
	}
	for _, tt := range tests {
		near(t, tt.expected, Mod(FromFloat(tt.x), FromFloat(tt.y)), 0.001)
	}
}

func TestTrig(t *testing.T) {
	halfPi := Div(Pi, FromInt(2))
	near(t, 0, Sin(0), 0.02)
	near(t, 1, Sin(halfPi), 0.02)
	near(t, 0, Sin(Pi), 0.03)
	near(t, -1, Sin(Pi+halfPi), 0.02)
	near(t, 1, Cos(0), 0.02)
	near(t, -1, Cos(Pi), 0.02)
	require.Greater(t, Tan(halfPi), FromInt(10))
	near(t, 0.785, Atan(One), 0.07)
	near(t, -1.107, Atan(FromInt(-2)), 0.03)
	near(t, 1.5708, Atan2(One, 0), 0.001)
	near(t, 3.1416, Atan2(0, -One), 0.001)
	near(t, 2.356, Atan2(One, -One), 0.07)
}

func TestSqrtPow(t *testing.T) {
	near(t, 2, Sqrt(FromInt(4)), 0.01)
	near(t, 1.414, Sqrt(FromInt(2)), 0.01)
	near(t, 0.5, Sqrt(FromFloat(0.25)), 0.01)
	require.Equal(t, Zero, Sqrt(FromInt(-4)))
	require.Equal(t, FromInt(8), PowInt(FromInt(2), 3))
	require.Equal(t, One, PowInt(FromInt(2), 0))
	near(t, 0.25, Pow(FromInt(2), FromInt(-2)), 0.001)
}

func TestInterpolation(t *testing.T) {
	near(t, 15, Lerp(0, FromInt(10), FromFloat(1.5)), 0.01)
	require.Equal(t, Zero, Step(Half, FromFloat(0.4)))
	require.Equal(t, One, Step(Half, Half))
	near(t, 0.5, Smoothstep(0, One, Half), 0.001)
	require.Equal(t, One, Smoothstep(0, One, FromInt(3)))
}

func TestPerlin3(t *testing.T) {
	for i := 0; i < 32; i++ {
		v := Perlin3(FromFloat(float64(i)*0.37), FromFloat(float64(i)*0.11), FromFloat(0.5), 3)
		require.GreaterOrEqual(t, v, Zero)
		require.LessOrEqual(t, v, One)
	}
	a := Perlin3(FromFloat(1.3), FromFloat(2.7), FromFloat(0.4), 4)
	b := Perlin3(FromFloat(1.3), FromFloat(2.7), FromFloat(0.4), 4)
	require.Equal(t, a, b)
	require.Equal(t,
		Perlin3(Half, Half, Half, 1),
		Perlin3(Half, Half, Half, -3))
}

func TestVectors(t *testing.T) {
	v := []Fixed{FromInt(3), FromInt(4)}
	near(t, 5, Length(v), 0.01)
	Normalize(v)
	near(t, 0.6, v[0], 0.01)
	near(t, 0.8, v[1], 0.01)
	near(t, 5, Distance([]Fixed{0, 0}, []Fixed{FromInt(3), FromInt(4)}), 0.01)
	c := Cross([3]Fixed{One, 0, 0}, [3]Fixed{0, One, 0})
	require.Equal(t, [3]Fixed{0, 0, One}, c)
}

func TestMat3(t *testing.T) {
	m := Mat3{FromInt(1), FromInt(2), FromInt(3), FromInt(4), FromInt(5), FromInt(6), FromInt(7), FromInt(8), FromInt(10)}
	require.Equal(t, FromInt(4), m.At(0, 1))
	require.Equal(t, m, Transpose(Transpose(m)))
	require.Equal(t, m, MulMat3(Identity(), m))
	near(t, -3, Determinant(m), 0.01)

	inv, ok := Inverse(m)
	require.True(t, ok)
	product := MulMat3(m, inv)
	for i, want := range Identity() {
		near(t, want.Float(), product[i], 0.01)
	}

	_, ok = Inverse(Mat3{})
	require.False(t, ok)

	v := MulVec3(Identity(), [3]Fixed{One, FromInt(2), FromInt(3)})
	require.Equal(t, [3]Fixed{One, FromInt(2), FromInt(3)}, v)
}
