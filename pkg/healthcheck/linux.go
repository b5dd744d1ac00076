//go:build linux

package healthcheck

import (
	"github.com/serum-errors/go-serum"
	"golang.org/x/sys/unix"
)

func executionAccess(path string) error {
	err := unix.Access(path, unix.X_OK)
	if err != nil {
		return serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageTemplate("fwsetup does not have execution access to file {{path|q}}"),
			serum.WithDetail("path", path),
		)
	}
	return nil
}

type utsname unix.Utsname

func uname() (*utsname, error) {
	var u utsname
	err := unix.Uname((*unix.Utsname)(&u))
	if err != nil {
		return nil, serum.Error(CodeRunFailure, serum.WithCause(err),
			serum.WithMessageLiteral("uname syscall failed"),
		)
	}
	return &u, nil
}
