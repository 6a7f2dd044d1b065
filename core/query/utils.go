package query

// Uint64Ptr is a helper function that returns a pointer to a uint64.
func Uint64Ptr(v uint64) *uint64 {
	return &v
}
