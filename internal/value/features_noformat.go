//go:build atmo_noformat

package value

func init() {
	formatSupported = false
}
