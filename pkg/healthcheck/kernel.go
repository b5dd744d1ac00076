package healthcheck

import (
	"bytes"
	"context"
	"fmt"

	"github.com/serum-errors/go-serum"
)

// KernelInfo reports the host kernel. Host and domain names are left out of the report.
type KernelInfo struct{}

// Run executes the checker
// Errors:
//
//   - fwsetup-error-healthcheck-run-fail -- syscall failure
//   - fwsetup-error-healthcheck-run-ambiguous -- returns kernel info
func (k *KernelInfo) Run(ctx context.Context) error {
	u, err := uname()
	if err != nil {
		return err
	}
	return serum.Errorf(CodeRunAmbiguous, "%s", kernelInfoString(u))
}

func (k *KernelInfo) String() string {
	return "Kernel info"
}

func kernelInfoString(u *utsname) string {
	return fmt.Sprintf("%s %s (%s) %s",
		cString(u.Sysname[:]),
		cString(u.Release[:]),
		cString(u.Version[:]),
		cString(u.Machine[:]),
	)
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
