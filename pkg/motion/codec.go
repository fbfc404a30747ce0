package motion

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrShortRecord is returned when a stream ends in the middle of a record.
var ErrShortRecord = errors.New("truncated record")

// ReadRecord reads a single little-endian record from r.
// It returns io.EOF only when no byte of the record was read.
func ReadRecord(r io.Reader) (Record, error) {
	var buf [RecordSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, ErrShortRecord
		}
		return Record{}, err
	}
	return decodeRecord(buf[:]), nil
}

func decodeRecord(b []byte) Record {
	var rec Record
	for i := range rec {
		rec[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return rec
}

func appendRecord(b []byte, rec Record) []byte {
	for _, v := range rec {
		b = binary.LittleEndian.AppendUint16(b, uint16(v))
	}
	return b
}

// Decode reads records from r until EOF.
func Decode(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	var records []Record
	for {
		rec, err := ReadRecord(br)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}

// Encode writes records to w in the same layout Decode reads.
func Encode(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)

	buf := make([]byte, 0, RecordSize)
	for i, rec := range records {
		buf = appendRecord(buf[:0], rec)
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// ReadFile decodes every record in filename.
func ReadFile(filename string) ([]Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open motion file: %w", err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return records, nil
}

// WriteFile writes records to filename, replacing it if it exists.
func WriteFile(filename string, records []Record) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create motion file: %w", err)
	}

	if err := Encode(f, records); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", filename, err)
	}

	return f.Close()
}

// Count returns the number of whole records in a stream of size bytes.
func Count(size int64) (int, error) {
	if size%RecordSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrShortRecord, size, RecordSize)
	}
	return int(size / RecordSize), nil
}
