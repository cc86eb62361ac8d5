package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

/** @brief a 3x3 matrix, row-major, used for the rotation/skew block of a node transform. */
type Mat3 struct {
	/** @brief The matrix elements */
	Data [9]float32
}

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the local transform of a node as it is stored in a unit:
 * a rotation/skew block, a translation, a scale and a trailing skew scalar.
 * The local matrix is derived on demand; there is no parent pointer because
 * parents are resolved by index through the owning hierarchy.
 */
type Transform struct {
	/** @brief The rotation (and skew) block. */
	Rotation Mat3
	/** @brief The translation relative to the parent. */
	Position Vec3
	/** @brief The scale. */
	Scale Vec3
	/** @brief Skew scalar, kept as stored. */
	Skew float32
}
