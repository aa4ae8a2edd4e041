//go:build atmo_static

package value

func init() {
	staticSize = StaticSize
}
