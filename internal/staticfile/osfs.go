package staticfile

import (
	"os"

	"originhttp/internal/body"
)

// OSFS implements FS over the local filesystem. It is the only part of
// this package that uses os; cmd/originserver wires it in, while tests
// pass Serve a fake FS and never touch disk.
type OSFS struct{}

func (OSFS) Open(path string) (body.File, error) {
	return os.Open(path)
}

func (OSFS) Stat(path string) (FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{IsRegular: fi.Mode().IsRegular(), Size: fi.Size()}, nil
}
