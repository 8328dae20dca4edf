package scraper

// browserProcess is the part of *launcher.Launcher needed to tear a
// Chromium process down.
type browserProcess interface {
	PID() int
	Kill()
	Cleanup()
}

// discardProcess kills the process and removes its profile directory.
// Nothing is done when no process was started: Kill would signal PID 0 and
// Cleanup would wait for an exit that never comes.
func discardProcess(p browserProcess) {
	if p.PID() == 0 {
		return
	}
	p.Kill()
	p.Cleanup()
}
