// Package table persists the leading elements of an array.Array to a flat
// binary file and loads them back.
//
// File layout, all integers little-endian:
//
//	magic    [4]byte "FXTB"
//	version  uint32
//	elemSize uint32
//	count    uint32
//	checksum uint32  over the payload
//	payload  count*elemSize bytes
package table

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"

	"github.com/wippyai/fixedkit/array"
	"github.com/wippyai/fixedkit/errors"
	"github.com/wippyai/fixedkit/hook"
)

const (
	Version    = 1
	headerSize = 20
)

var magic = [4]byte{'F', 'X', 'T', 'B'}

var (
	ErrChecksum = errors.Sentinel(errors.PhaseTable, errors.KindChecksum)
	ErrFormat   = errors.Sentinel(errors.PhaseTable, errors.KindInvalidData)
)

// ChecksumFunc computes the payload checksum.
type ChecksumFunc func(payload []byte) uint32

// Config configures a Table. Codec is required; Checksum defaults to
// CRC-32 (IEEE).
type Config[T any] struct {
	Codec       Codec[T]
	Checksum    ChecksumFunc
	Hook        hook.Func
	HookContext any
	Name        string
}

// Table saves and loads the contents of one array.
type Table[T any] struct {
	arr   array.Array[T]
	codec Codec[T]
	sum   ChecksumFunc
	rep   hook.Reporter
}

// New binds arr to a codec.
func New[T any](arr array.Array[T], cfg Config[T]) (*Table[T], error) {
	rep := hook.NewReporter(cfg.Hook, cfg.HookContext, cfg.Name)
	if arr == nil {
		return nil, rep.Fail(errors.NilPointer(errors.PhaseTable, "array"))
	}
	if cfg.Codec == nil {
		return nil, rep.Fail(errors.NilPointer(errors.PhaseTable, "codec"))
	}
	if cfg.Codec.Size() <= 0 {
		return nil, rep.Fail(errors.InvalidSize(errors.PhaseTable, "record size %d", cfg.Codec.Size()))
	}
	sum := cfg.Checksum
	if sum == nil {
		sum = crc32.ChecksumIEEE
	}
	return &Table[T]{arr: arr, codec: cfg.Codec, sum: sum, rep: rep}, nil
}

// Save writes the first n elements of the array to w.
func (t *Table[T]) Save(w io.Writer, n int) error {
	if n < 0 || n > t.arr.Cap() {
		return t.rep.Fail(errors.InvalidSize(errors.PhaseTable, "count %d outside capacity %d", n, t.arr.Cap()))
	}
	size := t.codec.Size()
	payload := make([]byte, n*size)
	var v T
	for i := range n {
		if err := array.Load(t.arr, i, &v); err != nil {
			return t.rep.Report(err)
		}
		if err := t.codec.Encode(payload[i*size:(i+1)*size], &v); err != nil {
			return t.rep.Report(err)
		}
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], Version)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(size))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(n))
	binary.LittleEndian.PutUint32(hdr[16:20], t.sum(payload))

	if _, err := w.Write(hdr[:]); err != nil {
		return t.rep.Fail(errors.Wrap(errors.PhaseTable, errors.KindWrite, err, "write header"))
	}
	if _, err := w.Write(payload); err != nil {
		return t.rep.Fail(errors.Wrap(errors.PhaseTable, errors.KindWrite, err, "write payload"))
	}
	return nil
}

// Load reads a file written by Save into the leading slots of the array and
// returns the element count. Slots past the count are left untouched. Nothing
// is written to the array unless the header and checksum are valid.
func (t *Table[T]) Load(r io.Reader) (int, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, t.rep.Fail(errors.Wrap(errors.PhaseTable, errors.KindRead, err, "read header"))
	}
	if !bytes.Equal(hdr[0:4], magic[:]) {
		return 0, t.rep.Fail(errors.InvalidData(errors.PhaseTable, "bad magic"))
	}
	if v := binary.LittleEndian.Uint32(hdr[4:8]); v != Version {
		return 0, t.rep.Fail(errors.New(errors.PhaseTable, errors.KindInvalidData).
			Value(v).
			Detail("unsupported version %d", v).
			Build())
	}
	size := t.codec.Size()
	if es := binary.LittleEndian.Uint32(hdr[8:12]); int(es) != size {
		return 0, t.rep.Fail(errors.New(errors.PhaseTable, errors.KindInvalidData).
			Value(es).
			Detail("record size %d, codec expects %d", es, size).
			Build())
	}
	count := int(binary.LittleEndian.Uint32(hdr[12:16]))
	if count > t.arr.Cap() {
		return 0, t.rep.Fail(errors.InvalidSize(errors.PhaseTable, "count %d exceeds capacity %d", count, t.arr.Cap()))
	}

	payload := make([]byte, count*size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, t.rep.Fail(errors.Wrap(errors.PhaseTable, errors.KindRead, err, "read payload"))
	}
	if want, got := binary.LittleEndian.Uint32(hdr[16:20]), t.sum(payload); want != got {
		return 0, t.rep.Fail(errors.New(errors.PhaseTable, errors.KindChecksum).
			Detail("checksum %08x, computed %08x", want, got).
			Build())
	}

	var v T
	for i := range count {
		if err := t.codec.Decode(payload[i*size:(i+1)*size], &v); err != nil {
			return i, t.rep.Report(err)
		}
		if err := array.Store(t.arr, i, &v); err != nil {
			return i, t.rep.Report(err)
		}
	}
	return count, nil
}

// SaveFile writes the first n elements to path, replacing any existing file.
func (t *Table[T]) SaveFile(path string, n int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return t.rep.Fail(errors.Wrap(errors.PhaseTable, errors.KindFile, err, "create "+path))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = t.rep.Fail(errors.Wrap(errors.PhaseTable, errors.KindFile, cerr, "close "+path))
		}
	}()
	return t.Save(f, n)
}

// LoadFile reads path into the array.
func (t *Table[T]) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, t.rep.Fail(errors.Wrap(errors.PhaseTable, errors.KindFile, err, "open "+path))
	}
	defer f.Close()
	return t.Load(f)
}
