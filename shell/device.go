package shell

// Entry is one name in a remote directory listing. Name is the base name
// only, never a full path.
type Entry struct {
	Name string
	Dir  bool
	Size int64
}

// ResetMode selects how the board should be restarted.
type ResetMode int

const (
	ResetSoft ResetMode = iota
	ResetNormal
	ResetSafe
	ResetBootloader
)

func (m ResetMode) String() string {
	switch m {
	case ResetSoft:
		return "soft"
	case ResetNormal:
		return "normal"
	case ResetSafe:
		return "safe"
	case ResetBootloader:
		return "bootloader"
	}
	return "unknown"
}

// Device is the file-operation surface of a connected board. The shell
// issues at most one operation at a time; implementations do not need to
// be safe for concurrent use.
type Device interface {
	List(dir string) ([]Entry, error)
	Mkdir(path string, existsOkay bool) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, onProgress func(written int)) error
	Remove(path string) error
	RemoveTree(path string, missingOkay bool) error
	Run(script []byte, wantOutput bool, wait bool) ([]byte, error)
	Reset(mode ResetMode) error
	Close() error
}

// Dialer opens a connection to the board reachable on the given serial
// port. The shell uses it when the operator switches ports.
type Dialer func(port string) (Device, error)
