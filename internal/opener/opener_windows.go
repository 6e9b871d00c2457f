//go:build windows

package opener

func command(path string) (string, []string) {
	return "notepad.exe", []string{path}
}
