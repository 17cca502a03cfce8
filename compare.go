package bptree

// CompareFunc supplies the total order over keys. It returns a negative
// number when a sorts before b, zero when they are equal, and a positive
// number when a sorts after b. Every ordering decision the tree makes goes
// through this function; keys the comparator reports equal are the same key.
type CompareFunc[K any] func(a, b K) int

// Ordered covers the types that have a defined natural order using the `<`
// operator. Trees keyed by one of these can be built with NewOrdered and
// need no explicit comparator.
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~string
}

// Compare is the default CompareFunc for Ordered key types: numeric order
// for numbers, lexicographic byte order for strings.
func Compare[K Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
