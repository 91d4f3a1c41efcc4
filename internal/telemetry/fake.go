package telemetry

// FakeSink records written bytes for test assertions.
type FakeSink struct {
	// Bytes contains every accepted byte.
	Bytes []byte

	// WriteError, if set, will be returned by WriteByte once FailAfter
	// bytes have been accepted.
	WriteError error
	FailAfter  int
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// WriteByte records c.
func (f *FakeSink) WriteByte(c byte) error {
	if f.WriteError != nil && len(f.Bytes) >= f.FailAfter {
		return f.WriteError
	}
	f.Bytes = append(f.Bytes, c)
	return nil
}

// String returns everything written so far.
func (f *FakeSink) String() string {
	return string(f.Bytes)
}

// Reset clears recorded bytes.
func (f *FakeSink) Reset() {
	f.Bytes = nil
}
