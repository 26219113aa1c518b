// Package debug provides environment toggled diagnostics written to
// stderr.
//
// Each toggle is read once at init from a TPLMERGE_DEBUG_* variable and
// parsed with strconv.ParseBool.
package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Resolve bool
	Merge   bool
	Refresh bool
	Store   bool
	RPC     bool
}

var d *debug

func init() {
	d = &debug{}
	d.Resolve = boolEnv("TPLMERGE_DEBUG_RESOLVE")
	d.Merge = boolEnv("TPLMERGE_DEBUG_MERGE")
	d.Refresh = boolEnv("TPLMERGE_DEBUG_REFRESH")
	d.Store = boolEnv("TPLMERGE_DEBUG_STORE")
	d.RPC = boolEnv("TPLMERGE_DEBUG_RPC")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Resolve() bool {
	return d.Resolve
}
func Merge() bool {
	return d.Merge
}
func Refresh() bool {
	return d.Refresh
}
func Store() bool {
	return d.Store
}
func RPC() bool {
	return d.RPC
}
