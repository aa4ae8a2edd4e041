//go:build atmo_nodouble

package value

func init() {
	doubleSupported = false
}
