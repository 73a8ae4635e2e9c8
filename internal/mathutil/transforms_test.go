package mathutil

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestRotationIdentity(t *testing.T) {
	r := Rotation(1, 0, 0, 0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(r[i][j]-want) > eps {
				t.Fatalf("identity rotation[%d][%d] = %v", i, j, r[i][j])
			}
		}
	}
}

func TestRotationIsOrthonormal(t *testing.T) {
	// 90 degrees about Y
	s := math.Sin(math.Pi / 4)
	r := Rotation(math.Cos(math.Pi/4), 0, s, 0)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dot := r[i][0]*r[j][0] + r[i][1]*r[j][1] + r[i][2]*r[j][2]
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(dot-want) > eps {
				t.Fatalf("row %d . row %d = %v, want %v", i, j, dot, want)
			}
		}
	}

	// +Z rotates to +X under a 90 degree yaw
	x := r[0][0]*0 + r[0][1]*0 + r[0][2]*1
	z := r[2][0]*0 + r[2][1]*0 + r[2][2]*1
	if math.Abs(x-1) > eps || math.Abs(z) > eps {
		t.Errorf("yawed +Z = (%v, _, %v), want (1, _, 0)", x, z)
	}
}

func TestFrustumOpenGLMapsClipPlanes(t *testing.T) {
	near, far := 0.1, 100.0
	m := FrustumOpenGL(-0.1, 0.1, -0.05, 0.05, near, far)

	// A point on the near plane lands at NDC z = -1
	z := m[10]*(-near) + m[14]
	w := m[11] * (-near)
	if math.Abs(z/w+1) > eps {
		t.Errorf("near plane maps to NDC z = %v, want -1", z/w)
	}

	// A point on the far plane lands at NDC z = +1
	z = m[10]*(-far) + m[14]
	w = m[11] * (-far)
	if math.Abs(z/w-1) > 1e-6 {
		t.Errorf("far plane maps to NDC z = %v, want 1", z/w)
	}

	// The frustum corner maps to the NDC edge
	x := m[0]*0.1 + m[8]*(-near)
	if math.Abs(x/(near)-1) > eps {
		t.Errorf("right edge maps to NDC x = %v, want 1", x/near)
	}
}

func TestViewOpenGLInvertsPose(t *testing.T) {
	// Identity orientation: the view just negates the position
	m := ViewOpenGL(1, 2, 3, 1, 0, 0, 0)
	if m[12] != -1 || m[13] != -2 || m[14] != -3 {
		t.Errorf("translation = (%v, %v, %v), want (-1, -2, -3)", m[12], m[13], m[14])
	}
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("rotation part is not identity")
	}

	// The eye position maps to the origin for any orientation
	s := math.Sin(0.3)
	c := math.Cos(0.3)
	m = ViewOpenGL(1, 2, 3, c, 0, s, 0)
	for i := 0; i < 3; i++ {
		got := m[i]*1 + m[i+4]*2 + m[i+8]*3 + m[i+12]
		if math.Abs(got) > eps {
			t.Errorf("eye position component %d maps to %v, want 0", i, got)
		}
	}
}

func TestLerpAndClamp(t *testing.T) {
	if got := Lerp(0, 10, 0.5); got != 5 {
		t.Errorf("Lerp(0, 10, 0.5) = %v", got)
	}
	if got := Clamp(12, 0, 10); got != 10 {
		t.Errorf("Clamp(12, 0, 10) = %v", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Errorf("Clamp(-3, 0, 10) = %v", got)
	}
}
