package messages

import (
	"bytes"
	"fmt"
	"io"

	messagefb "github.com/cbodonnell/deacoudre/flatbuffers/message"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// SerializeMessage encodes a message as a zstd compressed flatbuffer.
func SerializeMessage(m *Message) ([]byte, error) {
	b, err := SerializeMessageFlatbuffer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress message: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

// DeserializeMessage is the inverse of SerializeMessage.
func DeserializeMessage(data []byte) (*Message, error) {
	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(compReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed message: %v", err)
	}

	message, err := DeserializeMessageFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return message, nil
}

// SerializeMessageFlatbuffer writes the envelope as a flatbuffer table.
// The payload is carried as opaque bytes.
func SerializeMessageFlatbuffer(m *Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("message is nil")
	}
	builder := flatbuffers.NewBuilder(0)

	messageType := builder.CreateString(string(m.Type))
	var payload flatbuffers.UOffsetT
	if len(m.Payload) > 0 {
		payload = builder.CreateByteVector(m.Payload)
	}

	messagefb.MessageStart(builder)
	messagefb.MessageAddClientId(builder, m.ClientID)
	messagefb.MessageAddType(builder, messageType)
	if payload != 0 {
		messagefb.MessageAddPayload(builder, payload)
	}
	messageOffset := messagefb.MessageEnd(builder)
	builder.Finish(messageOffset)

	return builder.FinishedBytes(), nil
}

// DeserializeMessageFlatbuffer reads an envelope written by
// SerializeMessageFlatbuffer. The returned payload does not alias b.
func DeserializeMessageFlatbuffer(b []byte) (message *Message, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("buffer too short: %d bytes", len(b))
	}
	// the accessors index b directly and panic on a corrupt table
	defer func() {
		if r := recover(); r != nil {
			message = nil
			err = fmt.Errorf("corrupt message buffer: %v", r)
		}
	}()

	messageFlatbuffer := messagefb.GetRootAsMessage(b, 0)
	message = &Message{
		ClientID: messageFlatbuffer.ClientId(),
		Type:     MessageType(messageFlatbuffer.Type()),
	}
	if payload := messageFlatbuffer.PayloadBytes(); len(payload) > 0 {
		message.Payload = append([]byte(nil), payload...)
	}
	if message.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}

	return message, nil
}
