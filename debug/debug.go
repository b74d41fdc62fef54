package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Align  bool
	Driver bool
	Apply  bool
	Serve  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Align = boolEnv("TREEWIRE_DEBUG_ALIGN")
	d.Driver = boolEnv("TREEWIRE_DEBUG_DRIVER")
	d.Apply = boolEnv("TREEWIRE_DEBUG_APPLY")
	d.Serve = boolEnv("TREEWIRE_DEBUG_SERVE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Align() bool {
	return d.Align
}
func Driver() bool {
	return d.Driver
}
func Apply() bool {
	return d.Apply
}
func Serve() bool {
	return d.Serve
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
