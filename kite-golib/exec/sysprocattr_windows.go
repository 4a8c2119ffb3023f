// +build windows

package exec

import (
	"syscall"

	"github.com/winlabs/gowin32/wrappers"
)

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{HideWindow: true, CreationFlags: wrappers.CREATE_NO_WINDOW}
}
