package snapshotstream

import "encoding/binary"
import "io"

import "github.com/coldharbor/rsm/pkg/rsmerrors"


//=========================================== Snapshot Stream


/*
	WriteRecord appends one length-delimited record to w: four fields in
	a fixed order (id, type, name, body), each preceded by its own
	4-byte big-endian length prefix.
*/

func WriteRecord(w io.Writer, rec Record) error {
	idBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(idBuf, rec.ServiceID)

	fields := [][]byte{ idBuf, []byte(rec.ServiceType), []byte(rec.ServiceName), rec.Body }

	for _, field := range fields {
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(field)))

		if _, err := w.Write(lenBuf); err != nil { return err }
		if _, err := w.Write(field); err != nil { return err }
	}

	return nil
}

func readField(r io.Reader) ([]byte, error) {
	lenBuf := make([]byte, 4)

	if _, err := io.ReadFull(r, lenBuf); err != nil { return nil, err }

	size := binary.BigEndian.Uint32(lenBuf)
	field := make([]byte, size)

	if _, err := io.ReadFull(r, field); err != nil { return nil, err }

	return field, nil
}

/*
	ReadRecord reads one record from r. io.EOF signals a clean end of
	stream — the caller should stop without treating it as an error. A
	truncated trailing record surfaces as a SnapshotIOError wrapping
	io.ErrUnexpectedEOF (or io.EOF when the cut falls exactly between two
	of its fields) rather than panicking on a short read.
*/

func ReadRecord(r io.Reader) (Record, error) {
	idField, idErr := readField(r)
	if idErr == io.EOF { return Record{}, io.EOF }
	if idErr != nil { return Record{}, rsmerrors.Wrap(rsmerrors.SnapshotIOError, "truncated record id", idErr) }

	typeField, typeErr := readField(r)
	if typeErr != nil { return Record{}, rsmerrors.Wrap(rsmerrors.SnapshotIOError, "truncated record type", typeErr) }

	nameField, nameErr := readField(r)
	if nameErr != nil { return Record{}, rsmerrors.Wrap(rsmerrors.SnapshotIOError, "truncated record name", nameErr) }

	bodyField, bodyErr := readField(r)
	if bodyErr != nil { return Record{}, rsmerrors.Wrap(rsmerrors.SnapshotIOError, "truncated record body", bodyErr) }

	return Record{
		ServiceID: binary.BigEndian.Uint64(idField),
		ServiceType: string(typeField),
		ServiceName: string(nameField),
		Body: bodyField,
	}, nil
}

// ReadAll drains every record from r until a clean EOF.
func ReadAll(r io.Reader) ([]Record, error) {
	var records []Record

	for {
		rec, err := ReadRecord(r)
		if err == io.EOF { return records, nil }
		if err != nil { return records, err }

		records = append(records, rec)
	}
}
