package board

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
)

var comPort = regexp.MustCompile(`^COM(\d+)$`)

// PortName fixes up Windows COM port paths; everywhere else the name is
// used as typed.
func PortName(name string) string {
	if runtime.GOOS != "windows" {
		return name
	}
	return windowsPortName(name)
}

// windowsPortName escapes COM ports above COM9 with the \\.\ device
// prefix, lower ones are fine as plain names.
func windowsPortName(name string) string {
	m := comPort.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	if n, err := strconv.Atoi(m[1]); err == nil && n < 10 {
		return name
	}
	return fmt.Sprintf(`\\.\%s`, name)
}
