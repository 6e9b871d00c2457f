package notify

// SetRunner replaces command execution so tests never spawn a real
// notification.
func (n *Notifier) SetRunner(goos string, run func(name string, args ...string) error) {
	n.goos = goos
	n.run = run
}

var DesktopCommand = desktopCommand

// Start runs the default launcher, bypassing any replaced runner.
func (n *Notifier) Start(name string, args ...string) error {
	return n.start(name, args...)
}
