//go:build windows

package osmem

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsProvider backs Provider with VirtualAlloc/VirtualFree, the
// Windows-side counterpart of the runtime's asyncio IOCP backend's own use
// of golang.org/x/sys/windows.
type windowsProvider struct{}

// Default returns the Windows OS page provider.
func Default() Provider {
	return windowsProvider{}
}

func (windowsProvider) Map(n uintptr) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, n, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

func (windowsProvider) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	return windows.VirtualFree(uintptr(unsafe.Pointer(&b[0])), 0, windows.MEM_RELEASE)
}

func (windowsProvider) PageSize() uintptr {
	var si windows.SystemInfo

	windows.GetSystemInfo(&si)

	return uintptr(si.PageSize)
}
