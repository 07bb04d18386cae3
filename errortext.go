package pcanbus

import (
	"fmt"
	"iter"
	"strings"

	"github.com/roffe/pcanbus/pkg/pcan"
)

// bits yields the set bits of s, lowest first.
func bits(s pcan.Status) iter.Seq[pcan.Status] {
	return func(yield func(pcan.Status) bool) {
		n := s
		for n != 0 {
			bit := n & (^n + 1)
			if !yield(bit) {
				return
			}
			n ^= bit
		}
	}
}

// FormatError turns a status code into readable text. Codes the device
// cannot translate as a whole are split into single bits, one line each.
func FormatError(dev pcan.Device, code pcan.Status) string {
	if dev != nil {
		if st, text := dev.GetErrorText(code, 0); st == pcan.StatusOK {
			return text
		}
	}
	var lines []string
	for bit := range bits(code) {
		lines = append(lines, bitText(dev, bit))
	}
	return strings.Join(lines, "\n")
}

func bitText(dev pcan.Device, bit pcan.Status) string {
	if dev != nil {
		if st, text := dev.GetErrorText(bit, 0); st == pcan.StatusOK {
			return text
		}
	}
	return fmt.Sprintf("An error occurred. Error-code's text (%Xh) couldn't be retrieved", uint32(bit))
}
