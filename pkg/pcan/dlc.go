package pcan

var dlcToLen = [16]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 20, 24, 32, 48, 64}

// DLCToLen maps a 4-bit CAN FD data length code to a byte count.
func DLCToLen(dlc uint8) int {
	return dlcToLen[dlc&0x0F]
}

// LenToDLC returns the smallest data length code that holds n bytes.
// Lengths above 64 map to 15.
func LenToDLC(n int) uint8 {
	for dlc, l := range dlcToLen {
		if n <= l {
			return uint8(dlc)
		}
	}
	return 15
}
