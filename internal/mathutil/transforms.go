package mathutil

// Rotation converts a unit quaternion (w, x, y, z) into a 3x3 rotation
// matrix indexed as m[row][col]
func Rotation(w, x, y, z float64) [3][3]float64 {
	return [3][3]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// FrustumOpenGL builds a column-major OpenGL projection matrix from
// frustum plane distances, the same shape glFrustum produces
func FrustumOpenGL(left, right, bottom, top, near, far float64) [16]float64 {
	var m [16]float64
	m[0] = 2 * near / (right - left)
	m[5] = 2 * near / (top - bottom)
	m[8] = (right + left) / (right - left)
	m[9] = (top + bottom) / (top - bottom)
	m[10] = -(far + near) / (far - near)
	m[11] = -1
	m[14] = -2 * far * near / (far - near)
	return m
}

// ViewOpenGL builds a column-major OpenGL modelview matrix from a head
// pose: position (px, py, pz) and orientation quaternion (qw, qx, qy, qz).
// The result is the inverse of the pose transform, i.e. world-to-eye
func ViewOpenGL(px, py, pz, qw, qx, qy, qz float64) [16]float64 {
	r := Rotation(qw, qx, qy, qz)

	var m [16]float64
	// Rotation part is the transpose of the pose orientation
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m[row+4*col] = r[col][row]
		}
	}
	// Translation part carries the position back through the transpose
	m[12] = -(r[0][0]*px + r[1][0]*py + r[2][0]*pz)
	m[13] = -(r[0][1]*px + r[1][1]*py + r[2][1]*pz)
	m[14] = -(r[0][2]*px + r[1][2]*py + r[2][2]*pz)
	m[15] = 1
	return m
}

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
