package recording

import (
	"bytes"
	"encoding/binary"
)

const ContentTypeWAV = "audio/wav"

// unknownSize is what streaming encoders write when the final length is
// not known up front; decoders read until EOF.
const unknownSize = 0xFFFFFFFF

// streamingWAVHeader builds a RIFF header for PCM whose length is unknown.
func streamingWAVHeader(sampleRate, channels, bitsPerSample int) []byte {
	var buf bytes.Buffer

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(unknownSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(unknownSize))

	return buf.Bytes()
}
