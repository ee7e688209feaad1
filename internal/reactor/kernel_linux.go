//go:build linux

package reactor

import (
	"bytes"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sys/unix"

	"github.com/ravendale/go-udpreactor/internal/constants"
)

// checkKernelVersion fails construction early on a kernel too old to
// carry the epoll/eventfd/recvmmsg facilities this reactor depends on,
// rather than failing opaquely on the first syscall.
func checkKernelVersion() error {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return &Error{Op: "checkKernelVersion", Code: CodeConstruction, Msg: "uname", Inner: err}
	}

	release := cString(uts.Release[:])
	v, err := semver.NewVersion(trimSuffix(release))
	if err != nil {
		// A release whose numeric prefix semver still can't parse after
		// trimming (e.g. one with no leading digits) skips the check rather
		// than failing construction on an unreadable but likely-fine kernel.
		return nil
	}

	min := semver.New(uint64(constants.MinKernelMajor), uint64(constants.MinKernelMinor), 0, "", "")
	if v.LessThan(min) {
		return &Error{
			Op:   "checkKernelVersion",
			Code: CodeConstruction,
			Msg:  fmt.Sprintf("kernel %s is older than the minimum supported %s", release, min),
		}
	}
	return nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// trimSuffix keeps the leading MAJOR.MINOR.PATCH of a release string like
// "6.8.0-31-generic", dropping anything semver can't parse.
func trimSuffix(release string) string {
	end := len(release)
	for i, r := range release {
		if r != '.' && (r < '0' || r > '9') {
			end = i
			break
		}
	}
	return release[:end]
}
