package encio

// ChunkSize is how much spare room Buffer adds whenever it has to allocate.
const ChunkSize = 1024

// NewBuffer returns a Buffer with one chunk of capacity.
func NewBuffer() *Buffer {
	return &Buffer{
		buff: make([]byte, 0, ChunkSize),
	}
}

// Buffer is the encoder's output buffer. It only grows while in use; contents are never moved backwards.
type Buffer struct {
	buff []byte
}

// Write implements io.Writer
func (b *Buffer) Write(buff []byte) (int, error) {
	return copy(b.buff[b.grow(len(buff)):], buff), nil
}

// WriteByte implements io.ByteWriter
func (b *Buffer) WriteByte(by byte) error {
	b.buff[b.grow(1)] = by
	return nil
}

// WriteString writes s without converting it to a []byte first.
func (b *Buffer) WriteString(s string) (int, error) {
	return copy(b.buff[b.grow(len(s)):], s), nil
}

// Head writes an item head for the given major type and argument.
func (b *Buffer) Head(major byte, n uint64) {
	var scratch [MaxHeadSize]byte
	h := AppendHead(scratch[:0], major, n)
	copy(b.buff[b.grow(len(h)):], h)
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.buff)
}

// Bytes returns the written bytes. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buff
}

// Terminate writes a NUL sentinel after the content without counting it in Len or Bytes,
// for consumers that treat the buffer as a C string.
func (b *Buffer) Terminate() {
	b.grow(1)
	b.buff[len(b.buff)-1] = 0
	b.buff = b.buff[:len(b.buff)-1]
}

// Release drops the buffer's memory. The Buffer is empty and reusable afterwards.
func (b *Buffer) Release() {
	b.buff = nil
}

// grow makes room for n more bytes, returning the offset they start at.
func (b *Buffer) grow(n int) int {
	l := len(b.buff)
	if l+n <= cap(b.buff) {
		b.buff = b.buff[:l+n]
		return l
	}

	// must allocate
	nb := make([]byte, l+n, cap(b.buff)+n+ChunkSize)
	copy(nb, b.buff)
	b.buff = nb
	return l
}
