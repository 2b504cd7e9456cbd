package llm

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Audio is signed 16-bit little-endian PCM returned by the speech model.
type Audio struct {
	MIMEType   string
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration is the playback length of the audio.
func (a *Audio) Duration() time.Duration {
	if a == nil || a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	frames := len(a.PCM) / (2 * a.Channels)
	return time.Duration(frames) * time.Second / time.Duration(a.SampleRate)
}

// WAV wraps the PCM samples in a RIFF/WAVE container.
func (a *Audio) WAV() []byte {
	const bitsPerSample = 16
	channels := a.Channels
	if channels <= 0 {
		channels = 1
	}
	rate := a.SampleRate
	if rate <= 0 {
		rate = SpeechSampleRate
	}
	blockAlign := channels * bitsPerSample / 8
	dataLen := len(a.PCM)

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(a.PCM)
	return buf.Bytes()
}
