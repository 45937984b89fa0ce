package utils

// BoolPtr is used for optional settings where false and unset differ.
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue dereferences p, returning defaultValue when p is nil.
func BoolValue(p *bool, defaultValue bool) bool {
	if p == nil {
		return defaultValue
	}
	return *p
}
