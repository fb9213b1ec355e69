// pkg/torin/alignment.go
package torin

// alignContent moves target so that a block of the given extent sits at the
// center or end of container on one axis. Start and the spaced alignments
// leave target untouched.
func alignContent(target *Area, container Area, extent float32, a Alignment, d Direction, onMain bool) {
	start, size := container.crossStart(d), container.Size.cross(d)
	if onMain {
		start, size = container.mainStart(d), container.Size.main(d)
	}

	var pos float32
	switch a {
	case AlignCenter:
		pos = start + (size-extent)/2
	case AlignEnd:
		pos = start + size - extent
	default:
		return
	}

	if onMain {
		target.setMainStart(d, pos)
	} else {
		target.setCrossStart(d, pos)
	}
}

// alignPosition adds the gap a spaced main alignment puts before one child.
// available is the main extent of the line, used is what its children
// occupy and count how many stacked children it holds. Overflowing lines get
// no gaps.
func alignPosition(target *Area, available, used float32, count int, first bool, a Alignment, d Direction) {
	free := available - used
	if free <= 0 || count == 0 {
		return
	}

	var gap float32
	switch a {
	case AlignSpaceBetween:
		if first || count < 2 {
			return
		}
		gap = free / float32(count-1)
	case AlignSpaceEvenly:
		gap = free / float32(count+1)
	case AlignSpaceAround:
		gap = free / float32(count)
		if first {
			gap /= 2
		}
	default:
		return
	}
	target.setMainStart(d, target.mainStart(d)+gap)
}
