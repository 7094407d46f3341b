package types

// FileSystem is the host file-system adapter. Paths are relative to the
// adapter's root (the vault directory).
type FileSystem interface {
	// Read returns the file at path as text.
	Read(path string) (string, error)

	// ReadBinary returns the raw bytes of the file at path.
	ReadBinary(path string) ([]byte, error)

	// WriteBinary replaces the file at path with data, creating parent
	// directories as needed.
	WriteBinary(path string, data []byte) error

	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)
}

// Notifier surfaces short user-visible messages, such as "Table created" or
// a failure description.
type Notifier interface {
	Notice(msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(msg string)

// Notice calls f(msg).
func (f NotifierFunc) Notice(msg string) { f(msg) }
