//go:build atmo_nofloat

package value

func init() {
	floatSupported = false
}
