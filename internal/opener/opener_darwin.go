//go:build darwin

package opener

// -t opens in the default text editor rather than the .ini handler.
func command(path string) (string, []string) {
	return "open", []string{"-t", path}
}
