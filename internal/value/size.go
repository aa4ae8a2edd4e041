package value

// MaxSizeOf returns the largest payload size among kinds, using
// bufferBound for the variable-size kinds (String, Binary). It is used to
// size static entry storage.
func MaxSizeOf(kinds []Kind, bufferBound int) int {
	largest := 0
	for _, k := range kinds {
		n := k.Width()
		switch k {
		case KindString, KindBinary:
			n = bufferBound
		case KindList:
			n = bufferBound
		}
		if n > largest {
			largest = n
		}
	}
	return largest
}
