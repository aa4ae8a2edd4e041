package core

// PrintBytes dumps data through p.DebugPrint, one line per byte. ASCII
// letters and digits are echoed after the hex.
func PrintBytes(p Platform, data []byte) {
	for i, b := range data {
		if isPrintable(b) {
			p.DebugPrint("Data[%04d]: %02X (%c)\r\n", i, b, b)
		} else {
			p.DebugPrint("Data[%04d]: %02X\r\n", i, b)
		}
	}
}

func isPrintable(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
