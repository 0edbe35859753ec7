package fixed

var perm = [256]uint8{
	151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225, 140, 36, 103, 30, 69,
	142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148, 247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219,
	203, 117, 35, 11, 32, 57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
	74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122, 60, 211, 133, 230,
	220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54, 65, 25, 63, 161, 1, 216, 80, 73, 209, 76,
	132, 187, 208, 89, 18, 169, 200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173,
	186, 3, 64, 52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212, 207, 206,
	59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213, 119, 248, 152, 2, 44, 154, 163,
	70, 221, 153, 101, 155, 167, 43, 172, 9, 129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232,
	178, 185, 112, 104, 218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162,
	241, 81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157, 184, 84, 204,
	176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93, 222, 114, 67, 29, 24, 72, 243, 141,
	128, 195, 78, 66, 215, 61, 156, 180,
}

// DefaultOctaves is used when a script calls perlin3 without an octave count.
const DefaultOctaves = 3

var (
	noiseScale  = FromFloat(1.2)
	noiseOffset = FromFloat(0.6)
)

func fade(t Fixed) Fixed {
	t2 := Mul(t, t)
	t3 := Mul(t2, t)
	t4 := Mul(t3, t)
	t5 := Mul(t4, t)
	return MulInt(t5, 6) - MulInt(t4, 15) + MulInt(t3, 10)
}

func grad(hash uint8, x, y, z Fixed) Fixed {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	var v Fixed
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

func p(i int) int {
	return int(perm[i&255])
}

// Perlin3 returns fractal Perlin noise in [0, 1]. Octaves are clamped to
// [1, 8]; each octave doubles frequency and halves amplitude.
func Perlin3(x, y, z Fixed, octaves int) Fixed {
	if octaves < 1 {
		octaves = 1
	} else if octaves > 8 {
		octaves = 8
	}
	var total int64
	amplitude := int64(One)
	frequency := One
	for i := 0; i < octaves; i++ {
		n := perlinSingle(Mul(x, frequency), Mul(y, frequency), Mul(z, frequency))
		total += int64(n) * amplitude
		amplitude >>= 1
		frequency <<= 1
	}
	raw := Fixed(int32(total >> Shift))
	return Saturate(Mul(raw, noiseScale) + noiseOffset)
}

func perlinSingle(x, y, z Fixed) Fixed {
	xi := int(x.Int() & 255)
	yi := int(y.Int() & 255)
	zi := int(z.Int() & 255)

	xf, yf, zf := x.Frac(), y.Frac(), z.Frac()
	u, v, w := fade(xf), fade(yf), fade(zf)

	aaa := p(p(p(xi)+yi) + zi)
	aba := p(p(p(xi)+yi+1) + zi)
	aab := p(p(p(xi)+yi) + zi + 1)
	abb := p(p(p(xi)+yi+1) + zi + 1)
	baa := p(p(p(xi+1)+yi) + zi)
	bba := p(p(p(xi+1)+yi+1) + zi)
	bab := p(p(p(xi+1)+yi) + zi + 1)
	bbb := p(p(p(xi+1)+yi+1) + zi + 1)

	x1 := Lerp(grad(perm[aaa], xf, yf, zf), grad(perm[baa], xf-One, yf, zf), u)
	x2 := Lerp(grad(perm[aba], xf, yf-One, zf), grad(perm[bba], xf-One, yf-One, zf), u)
	y1 := Lerp(x1, x2, v)

	x3 := Lerp(grad(perm[aab], xf, yf, zf-One), grad(perm[bab], xf-One, yf, zf-One), u)
	x4 := Lerp(grad(perm[abb], xf, yf-One, zf-One), grad(perm[bbb], xf-One, yf-One, zf-One), u)
	y2 := Lerp(x3, x4, v)

	return Lerp(y1, y2, w)
}
