package checkpointer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Naming selects how checkpoint filenames are generated
type Naming string

const (
	// Enumerate suffixes filenames with 1, 2, 3, ...
	Enumerate Naming = "enumerate"

	// Timestamp suffixes filenames with nanoseconds since the epoch
	Timestamp Naming = "time"

	// UUID suffixes filenames with a random UUID, so concurrent runs
	// writing to the same directory never collide
	UUID Naming = "uuid"
)

// Filenames returns the filename generator for the naming scheme, or
// an error if the scheme is unknown
func (n Naming) Filenames(filename, extension string) (func() string, error) {
	switch n {
	case Enumerate:
		return FilenameEnumerator(0, filename, extension), nil
	case Timestamp:
		return FileTimer(filename, extension), nil
	case UUID, "":
		return FileUUID(filename, extension), nil
	}
	return nil, fmt.Errorf("filenames: unknown naming scheme %q", n)
}

// FilenameEnumerator returns a function which generates filenames with
// an increasing integer suffix, starting at start+1.
func FilenameEnumerator(start int, filename, extension string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v%v%v", filename, i, extension)
	}
}

// FileTimer returns a function which appends the current Unix time in
// nanoseconds to filename
func FileTimer(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename, time.Now().UnixNano(),
			extension)
	}
}

// FileUUID returns a function which appends a random UUID to filename
func FileUUID(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename, uuid.NewString(), extension)
	}
}
