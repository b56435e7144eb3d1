// Package bof reads and writes BOF object images: a fixed header followed by
// the text segment (encoded instructions) and the data segment (literal
// words). All fields and words are little-endian 32-bit values.
package bof

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/xplshn/gpl0/pkg/config"
	"github.com/xplshn/gpl0/pkg/isa"
)

// HeaderSize is the encoded size of a Header in bytes.
const HeaderSize = 4 + 5*isa.BytesPerWord

var ErrBadImage = errors.New("bof: malformed object image")

// Header describes the layout of an image. Lengths and addresses of the text
// segment are in words; DataLength is in bytes.
type Header struct {
	Magic       [4]byte
	TextStart   int32
	TextLength  int32
	DataStart   int32
	DataLength  int32
	StackBottom int32
}

// NewHeader lays out an image of textWords instructions followed by
// literals data words, with the stack placed after both.
func NewHeader(textWords, literals int) Header {
	h := Header{
		TextStart:   0,
		TextLength:  int32(textWords),
		DataStart:   int32(textWords),
		DataLength:  int32(literals * isa.BytesPerWord),
		StackBottom: int32(textWords + literals + config.StackSpace),
	}
	copy(h.Magic[:], config.Magic)
	return h
}

// DataWords is the number of words in the data segment.
func (h Header) DataWords() int { return int(h.DataLength) / isa.BytesPerWord }

func (h Header) validate() error {
	switch {
	case string(h.Magic[:]) != config.Magic:
		return fmt.Errorf("%w: bad magic %q", ErrBadImage, h.Magic[:])
	case h.TextStart != 0 || h.TextLength < 0 || h.TextLength > isa.MaxImm+1:
		return fmt.Errorf("%w: text segment at %d with length %d", ErrBadImage, h.TextStart, h.TextLength)
	case h.DataStart != h.TextStart+h.TextLength:
		return fmt.Errorf("%w: data segment starts at %d, want %d", ErrBadImage, h.DataStart, h.TextStart+h.TextLength)
	case h.DataLength < 0 || h.DataLength%isa.BytesPerWord != 0:
		return fmt.Errorf("%w: data length %d is not a whole number of words", ErrBadImage, h.DataLength)
	case h.StackBottom < h.DataStart+int32(h.DataWords()):
		return fmt.Errorf("%w: stack bottom %d overlaps the data segment", ErrBadImage, h.StackBottom)
	}
	return nil
}

// Writer writes an image one header and one word at a time.
type Writer struct {
	dst io.WriteCloser
	bw  *bufio.Writer
}

func NewWriter(w io.WriteCloser) *Writer {
	return &Writer{dst: w, bw: bufio.NewWriter(w)}
}

func (w *Writer) WriteHeader(h Header) error {
	return binary.Write(w.bw, binary.LittleEndian, h)
}

func (w *Writer) WriteWord(word isa.Word) error {
	var b [isa.BytesPerWord]byte
	binary.LittleEndian.PutUint32(b[:], uint32(word))
	_, err := w.bw.Write(b[:])
	return err
}

// Close flushes buffered output and closes the underlying writer.
func (w *Writer) Close() error {
	ferr := w.bw.Flush()
	cerr := w.dst.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// File is a decoded image.
type File struct {
	Header Header
	Text   []isa.Instruction
	Data   []isa.Word
}

// Read decodes and validates an image.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	f := &File{}
	if err := binary.Read(br, binary.LittleEndian, &f.Header); err != nil {
		return nil, fmt.Errorf("bof: reading header: %w", err)
	}
	if err := f.Header.validate(); err != nil {
		return nil, err
	}

	words := make([]uint32, f.Header.TextLength)
	if err := binary.Read(br, binary.LittleEndian, words); err != nil {
		return nil, fmt.Errorf("bof: reading text segment: %w", err)
	}
	f.Text = make([]isa.Instruction, len(words))
	for i, w := range words {
		in, err := isa.Decode(w)
		if err != nil {
			return nil, fmt.Errorf("bof: text word %d: %w", i, err)
		}
		f.Text[i] = in
	}

	f.Data = make([]isa.Word, f.Header.DataWords())
	if err := binary.Read(br, binary.LittleEndian, f.Data); err != nil {
		return nil, fmt.Errorf("bof: reading data segment: %w", err)
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing bytes after data segment", ErrBadImage)
	}
	return f, nil
}

// Disassemble writes a listing of the image: header fields, then one line per
// text and data word, addressed from the start of the image.
func (f *File) Disassemble(w io.Writer) error {
	bw := bufio.NewWriter(w)
	h := f.Header
	fmt.Fprintf(bw, "magic:        %s\n", h.Magic[:])
	fmt.Fprintf(bw, "text start:   %d\n", h.TextStart)
	fmt.Fprintf(bw, "text length:  %d\n", h.TextLength)
	fmt.Fprintf(bw, "data start:   %d\n", h.DataStart)
	fmt.Fprintf(bw, "data length:  %d\n", h.DataLength)
	fmt.Fprintf(bw, "stack bottom: %d\n", h.StackBottom)

	fmt.Fprintf(bw, "\n.text\n")
	for i, in := range f.Text {
		fmt.Fprintf(bw, "%6d: %s\n", int(h.TextStart)+i, in)
	}
	fmt.Fprintf(bw, "\n.data\n")
	for i, v := range f.Data {
		fmt.Fprintf(bw, "%6d: %d\n", int(h.DataStart)+i, v)
	}
	return bw.Flush()
}
