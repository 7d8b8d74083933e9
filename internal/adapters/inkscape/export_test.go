package inkscape

// SetLookPath replaces the PATH lookup used to detect the flatpak wrapper.
func SetLookPath(r *Rasterizer, fn func(string) (string, error)) {
	r.lookPath = fn
}
