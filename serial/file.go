package serial

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// EncodeText writes d as TOML.
func EncodeText(out io.Writer, d *Document) error {
	enc := toml.NewEncoder(out)
	enc.SetIndentTables(true)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("serial: encode text: %w", err)
	}
	return nil
}

// DecodeText reads a TOML document.
func DecodeText(in io.Reader) (*Document, error) {
	var d Document
	if err := toml.NewDecoder(in).Decode(&d); err != nil {
		return nil, fmt.Errorf("serial: decode text: %w", err)
	}
	if d.Version == 0 || d.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, d.Version)
	}
	return &d, nil
}

// Encode writes d in format f. FormatAuto selects the binary encoding.
func Encode(out io.Writer, d *Document, f Format) error {
	if f == FormatText {
		return EncodeText(out, d)
	}
	return EncodeBinary(out, d)
}

// Decode reads a document in either encoding, detected from its first
// bytes.
func Decode(in io.Reader) (*Document, error) {
	br := bufio.NewReader(in)
	head, err := br.Peek(len(magic))
	if err == nil && bytes.Equal(head, magic[:]) {
		return DecodeBinary(br)
	}
	return DecodeText(br)
}

// WriteFile writes d to path. FormatAuto picks the format from the
// extension. A partially written file is removed.
func WriteFile(path string, d *Document, f Format) (err error) {
	if f == FormatAuto {
		f = FormatFor(path)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("serial: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return Encode(file, d, f)
}

// ReadFile reads the document at path.
func ReadFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}
	defer file.Close()
	return Decode(file)
}
