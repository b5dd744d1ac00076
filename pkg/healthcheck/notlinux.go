//go:build !linux

package healthcheck

import "github.com/serum-errors/go-serum"

type utsname struct {
	Sysname [65]byte
	Release [65]byte
	Version [65]byte
	Machine [65]byte
}

func executionAccess(path string) error {
	return serum.Error(CodeRunAmbiguous, serum.WithMessageLiteral("Execution access detection not implemented for non-Linux systems"))
}

func uname() (*utsname, error) {
	return nil, serum.Error(CodeRunAmbiguous, serum.WithMessageLiteral("Kernel info only for Linux systems"))
}
