package protocol

import (
	"bufio"
	"io"
)

// FrameReader pulls tick reports out of a byte stream.
//
// After a corrupt block it drops input up to the next sync byte before
// trying again, the same way the firmware transport resynchronizes.
type FrameReader struct {
	r      *bufio.Reader
	synced bool
	buf    [MessageLengthMax]byte
}

// NewFrameReader returns a reader positioned at the start of a block.
// Leading sync bytes are skipped.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		r:      bufio.NewReaderSize(r, 256),
		synced: true,
	}
}

// Next returns the next tick report.
//
// Corrupt blocks are reported with an error satisfying IsFrameError; the
// reader is left resynchronizing and Next may be called again. Any other
// error comes from the underlying stream.
func (fr *FrameReader) Next() (TickReport, error) {
	for {
		if !fr.synced {
			if err := fr.skipToSync(); err != nil {
				return TickReport{}, err
			}
			fr.synced = true
		}

		b, err := fr.r.ReadByte()
		if err != nil {
			return TickReport{}, err
		}
		if b == MessageValueSync {
			continue
		}

		msgLen := int(b)
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			fr.synced = false
			continue
		}

		fr.buf[0] = b
		if _, err := io.ReadFull(fr.r, fr.buf[1:msgLen]); err != nil {
			// The rest of the block may still arrive; drop it
			fr.synced = false
			return TickReport{}, err
		}

		report, err := DecodeTickReport(fr.buf[:msgLen])
		if err != nil {
			// The block ended in a sync byte only if it was well delimited
			fr.synced = fr.buf[msgLen-MessageTrailerSync] == MessageValueSync
			return TickReport{}, err
		}
		return report, nil
	}
}

func (fr *FrameReader) skipToSync() error {
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return err
		}
		if b == MessageValueSync {
			return nil
		}
	}
}
