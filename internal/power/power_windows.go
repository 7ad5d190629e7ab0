//go:build windows

package power

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	shutdownPrivilege         = "SeShutdownPrivilege"
	shutdownReasonMajorOther  = 0x00000000
	shutdownReasonFlagPlanned = 0x80000000
)

type systemTrigger struct{}

// System returns the trigger for this platform: InitiateSystemShutdownEx
// after enabling SeShutdownPrivilege on the process token.
func System() Trigger {
	return systemTrigger{}
}

func (systemTrigger) Shutdown() error {
	if err := enableShutdownPrivilege(); err != nil {
		return err
	}
	err := windows.InitiateSystemShutdownEx(nil, nil, 0, true, false,
		shutdownReasonMajorOther|shutdownReasonFlagPlanned)
	if err != nil {
		return fmt.Errorf("InitiateSystemShutdownEx: %w", err)
	}
	return nil
}

func enableShutdownPrivilege() error {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token); err != nil {
		return fmt.Errorf("open process token: %w", err)
	}
	defer token.Close()

	name, err := windows.UTF16PtrFromString(shutdownPrivilege)
	if err != nil {
		return err
	}
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, name, &luid); err != nil {
		return fmt.Errorf("lookup %s: %w", shutdownPrivilege, err)
	}

	privileges := windows.Tokenprivileges{
		PrivilegeCount: 1,
		Privileges: [1]windows.LUIDAndAttributes{
			{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED},
		},
	}
	err = windows.AdjustTokenPrivileges(token, false, &privileges, uint32(unsafe.Sizeof(privileges)), nil, nil)
	if err != nil {
		return fmt.Errorf("enable %s: %w", shutdownPrivilege, err)
	}
	return nil
}
