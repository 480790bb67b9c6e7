package sink

// Sink receives generated report files. Paths are slash-separated and
// relative to the sink root; the sink decides where and how they are
// persisted.
type Sink interface {
	// WriteFile stores one file, creating parent directories as needed.
	WriteFile(relPath string, data []byte) error
}
