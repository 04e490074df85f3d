// Package simplify joins the open way fragments of a multipolygon into rings.
package simplify

func reverse[T comparable](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Closed reports whether a line ends where it starts.
func Closed[T comparable](line []T) bool {
	return len(line) > 2 && line[0] == line[len(line)-1]
}

// Join glues lines sharing an end point, reversing them where needed, until
// nothing can be joined anymore. Closed lines are left alone. The input is
// not modified.
func Join[T comparable](lines [][]T) [][]T {
	in := make([][]T, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		in = append(in, append([]T(nil), line...))
	}

	// Keep joining until a full pass finds nothing.
	repeat := true
	for repeat {
		repeat = false

		for i := 0; i < len(in) && !repeat; i++ {
			if Closed(in[i]) {
				continue
			}
			start := in[i][0]
			end := in[i][len(in[i])-1]

			for j := 0; j < len(in); j++ {
				other := in[j]
				if i == j || Closed(other) {
					continue
				}
				start2 := other[0]
				end2 := other[len(other)-1]

				switch {
				case end == start2:
					in[i] = append(in[i], other[1:]...)
				case end == end2:
					reverse(other)
					in[i] = append(in[i], other[1:]...)
				case start == end2:
					in[i] = append(other[:len(other)-1], in[i]...)
				case start == start2:
					reverse(other)
					in[i] = append(other[:len(other)-1], in[i]...)
				default:
					continue
				}

				in = append(in[:j], in[j+1:]...)
				repeat = true
				break
			}
		}
	}
	return in
}

// Rings joins the lines and splits the result into closed rings and the
// fragments that could not be closed.
func Rings[T comparable](lines [][]T) (closed [][]T, open [][]T) {
	for _, line := range Join(lines) {
		if Closed(line) {
			closed = append(closed, line)
		} else {
			open = append(open, line)
		}
	}
	return closed, open
}
