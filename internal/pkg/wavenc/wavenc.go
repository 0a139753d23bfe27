// Package wavenc wraps raw PCM samples in a RIFF/WAVE container so the
// browser can play them directly.
package wavenc

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	headerSize = 44

	// What the speech models emit.
	DefaultChannels   = 1
	DefaultSampleRate = 24000
	DefaultBitDepth   = 16
)

// Encode prefixes pcm with a WAV header describing channels mono/stereo,
// sampleRate in Hz and bitDepth bits per sample. The header fields must
// describe the samples or playback corrupts, so empty input is an error
// rather than a silent zero-length file.
func Encode(pcm []byte, channels, sampleRate, bitDepth int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, errors.New("wavenc: no samples to encode")
	}
	if channels <= 0 || sampleRate <= 0 || bitDepth <= 0 || bitDepth%8 != 0 {
		return nil, errors.New("wavenc: invalid format parameters")
	}

	blockAlign := channels * bitDepth / 8
	byteRate := sampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(pcm)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16)) // PCM chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM format
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes(), nil
}

// EncodeDefault encodes with the format the speech models produce:
// mono 16-bit PCM at 24 kHz.
func EncodeDefault(pcm []byte) ([]byte, error) {
	return Encode(pcm, DefaultChannels, DefaultSampleRate, DefaultBitDepth)
}
