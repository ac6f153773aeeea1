//go:build unix

package osmem

import "golang.org/x/sys/unix"

// unixProvider backs Provider with unix.Mmap/unix.Munmap, the same
// anonymous-mapping idiom the runtime's asyncio package uses for its kqueue
// and splice backends.
type unixProvider struct{}

// Default returns the unix OS page provider.
func Default() Provider {
	return unixProvider{}
}

func (unixProvider) Map(n uintptr) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (unixProvider) Unmap(b []byte) error {
	return unix.Munmap(b)
}

func (unixProvider) PageSize() uintptr {
	return uintptr(unix.Getpagesize())
}
