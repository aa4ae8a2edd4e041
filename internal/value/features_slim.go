//go:build atmo_slim

package value

func init() {
	listSupported = false
}
