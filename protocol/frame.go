package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrBadFrame = errors.New("malformed tick report frame")
	ErrBadCRC   = errors.New("tick report CRC mismatch")
)

// TickReport is one sample of a device's rolling timer
type TickReport struct {
	Seq   uint8  // Low 4 bits of the report sequence
	Rate  uint32 // Device ticks per second
	Ticks uint32 // Device tick at the time of the report
}

// AppendTickReport appends r to dst as a complete message block
func AppendTickReport(dst []byte, r TickReport) []byte {
	start := len(dst)
	dst = append(dst, 0, MessageDest|(r.Seq&MessageSeqMask))
	dst = AppendVLQUint(dst, r.Rate)
	dst = AppendVLQUint(dst, r.Ticks)

	msgLen := len(dst) - start + MessageTrailerSize
	dst[start+MessagePositionLen] = byte(msgLen)

	crc := CRC16(dst[start:])
	return append(dst, byte(crc>>8), byte(crc), MessageValueSync)
}

// DecodeTickReport decodes one complete message block
func DecodeTickReport(block []byte) (TickReport, error) {
	if len(block) < MessageLengthMin || len(block) > MessageLengthMax {
		return TickReport{}, fmt.Errorf("%w: length %d", ErrBadFrame, len(block))
	}
	msgLen := int(block[MessagePositionLen])
	if msgLen != len(block) {
		return TickReport{}, fmt.Errorf("%w: header length %d, have %d", ErrBadFrame, msgLen, len(block))
	}
	seq := block[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		return TickReport{}, fmt.Errorf("%w: sequence byte 0x%02x", ErrBadFrame, seq)
	}
	if block[msgLen-MessageTrailerSync] != MessageValueSync {
		return TickReport{}, fmt.Errorf("%w: missing sync byte", ErrBadFrame)
	}

	frameCRC := uint16(block[msgLen-MessageTrailerCRC])<<8 |
		uint16(block[msgLen-MessageTrailerCRC+1])
	if actual := CRC16(block[:msgLen-MessageTrailerSize]); frameCRC != actual {
		return TickReport{}, fmt.Errorf("%w: got 0x%04x, want 0x%04x", ErrBadCRC, frameCRC, actual)
	}

	payload := block[MessageHeaderSize : msgLen-MessageTrailerSize]
	rate, err := DecodeVLQUint(&payload)
	if err != nil {
		return TickReport{}, fmt.Errorf("%w: rate: %w", ErrBadFrame, err)
	}
	ticks, err := DecodeVLQUint(&payload)
	if err != nil {
		return TickReport{}, fmt.Errorf("%w: ticks: %w", ErrBadFrame, err)
	}
	if len(payload) != 0 {
		return TickReport{}, fmt.Errorf("%w: %d trailing payload bytes", ErrBadFrame, len(payload))
	}
	if rate == 0 {
		return TickReport{}, fmt.Errorf("%w: zero rate", ErrBadFrame)
	}

	return TickReport{Seq: seq & MessageSeqMask, Rate: rate, Ticks: ticks}, nil
}

// IsFrameError reports whether err came from a corrupt frame rather than
// from the underlying stream
func IsFrameError(err error) bool {
	return errors.Is(err, ErrBadFrame) || errors.Is(err, ErrBadCRC)
}
