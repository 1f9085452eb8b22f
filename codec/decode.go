package codec

import (
	"fmt"

	"github.com/glimte/mmate-envelope/contracts"
	"github.com/glimte/mmate-envelope/envelope"
)

// Decode reconstructs an envelope from buf. Items whose contract name cannot
// be resolved are returned as raw messages. Items whose payload fails to
// deserialize are returned as raw messages too, unless the codec was built
// with WithStrictPayloads. The returned envelope does not share memory with buf.
func (c *Codec) Decode(buf []byte) (*envelope.Envelope, error) {
	header, err := contracts.ReadHeader(buf)
	if err != nil {
		return nil, &DecodeError{
			Op:        "read header",
			Index:     -1,
			Length:    contracts.HeaderSize,
			Available: int64(len(buf)),
			Err:       fmt.Errorf("%w: %w", ErrCorruptEnvelope, err),
		}
	}
	if !header.IsCurrent() {
		return nil, &DecodeError{
			Op:        "read header",
			Index:     -1,
			Length:    contracts.HeaderSize,
			Available: int64(len(buf)),
			Err:       fmt.Errorf("%w: got %d, want %d", ErrUnsupportedFormatVersion, header.FormatVersion, contracts.FormatVersion),
		}
	}

	remaining := int64(len(buf) - contracts.HeaderSize)
	if header.MetadataLength < 0 || header.MetadataLength > remaining {
		return nil, &DecodeError{
			Op:        "slice metadata",
			Index:     -1,
			Offset:    contracts.HeaderSize,
			Length:    header.MetadataLength,
			Available: remaining,
			Err:       fmt.Errorf("%w: metadata length out of range", ErrCorruptEnvelope),
		}
	}

	payloadStart := contracts.HeaderSize + header.MetadataLength
	contract, err := c.envelopes.DeserializeMetadata(buf[contracts.HeaderSize:payloadStart])
	if err == nil && contract == nil {
		err = fmt.Errorf("metadata decoded to nil")
	}
	if err != nil {
		return nil, &DecodeError{
			Op:        "deserialize metadata",
			Index:     -1,
			Offset:    contracts.HeaderSize,
			Length:    header.MetadataLength,
			Available: remaining,
			Err:       fmt.Errorf("%w: %w", ErrCorruptEnvelope, err),
		}
	}

	payload := buf[payloadStart:]
	messages := make([]envelope.Message, len(contract.Messages))
	for i, item := range contract.Messages {
		m, err := c.decodeItem(i, item, payload)
		if err != nil {
			return nil, err
		}
		messages[i] = m
	}

	attrs, err := envelope.AttributesFromContract(contract.Attributes)
	if err != nil {
		return nil, &DecodeError{
			Op:    "convert attributes",
			Index: -1,
			Err:   fmt.Errorf("%w: %w", ErrCorruptEnvelope, err),
		}
	}

	for _, ts := range []*contracts.Timestamp{contract.CreatedOn, contract.DeliverOn} {
		if ts != nil && (ts.Nanos < 0 || ts.Nanos >= 1e9) {
			return nil, &DecodeError{
				Op:    "convert timestamps",
				Index: -1,
				Err:   fmt.Errorf("%w: nanos %d out of range", ErrCorruptEnvelope, ts.Nanos),
			}
		}
	}

	return envelope.New(contract.EnvelopeID, messages, attrs, contract.CreatedOn.Time(), contract.DeliverOn.Time()), nil
}

func (c *Codec) decodeItem(i int, item contracts.MessageContract, payload []byte) (envelope.Message, error) {
	available := int64(len(payload))
	if item.ContentOffset < 0 || item.ContentLength < 0 ||
		item.ContentOffset > available || item.ContentLength > available-item.ContentOffset {
		return envelope.Message{}, &DecodeError{
			Op:        "slice payload",
			Index:     i,
			Offset:    item.ContentOffset,
			Length:    item.ContentLength,
			Available: available,
			Err:       fmt.Errorf("%w: payload range out of bounds", ErrCorruptEnvelope),
		}
	}

	attrs, err := envelope.AttributesFromContract(item.Attributes)
	if err != nil {
		return envelope.Message{}, &DecodeError{
			Op:     "convert attributes",
			Index:  i,
			Offset: item.ContentOffset,
			Length: item.ContentLength,
			Err:    fmt.Errorf("%w: %w", ErrCorruptEnvelope, err),
		}
	}

	data := payload[item.ContentOffset : item.ContentOffset+item.ContentLength]

	t, ok := c.payloads.TypeForContractName(item.ContractName)
	if !ok {
		c.logger.Debug("keeping unresolved item as raw bytes",
			"index", i,
			"contract", item.ContractName,
			"length", item.ContentLength)
		reason := fmt.Errorf("%w: %q", ErrContractNameUnresolved, item.ContractName)
		return envelope.RawMessage(i, item.ContractName, data, attrs, reason), nil
	}

	value, err := c.payloads.Deserialize(data, t)
	if err != nil {
		reason := fmt.Errorf("%w: %w", ErrPayloadDeserializationFailed, err)
		if c.strict {
			return envelope.Message{}, &DecodeError{
				Op:        "deserialize payload",
				Index:     i,
				Offset:    item.ContentOffset,
				Length:    item.ContentLength,
				Available: available,
				Err:       reason,
			}
		}
		c.logger.Warn("keeping undecodable item as raw bytes",
			"index", i,
			"contract", item.ContractName,
			"error", err)
		return envelope.RawMessage(i, item.ContractName, data, attrs, reason), nil
	}

	return envelope.DecodedMessage(i, item.ContractName, value, t, attrs), nil
}
