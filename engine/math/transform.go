package math

func TransformCreate() Transform {
	return Transform{
		Rotation: NewMat3Identity(),
		Position: NewVec3Zero(),
		Scale:    NewVec3One(),
	}
}

func TransformFromPosition(position Vec3) Transform {
	t := TransformCreate()
	t.Position = position
	return t
}

// GetLocal composes scale, rotation and translation in that order.
// The skew scalar is not applied.
func (t Transform) GetLocal() Mat4 {
	r := NewMat4FromMat3(t.Rotation)
	tr := r.Mul(NewMat4Translation(t.Position))
	s := NewMat4Scale(t.Scale)
	return s.Mul(tr)
}

// GetWorld returns the local matrix combined with an already resolved parent world matrix.
func (t Transform) GetWorld(parent Mat4) Mat4 {
	return t.GetLocal().Mul(parent)
}
