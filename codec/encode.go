package codec

import (
	"bytes"
	"fmt"

	"github.com/glimte/mmate-envelope/contracts"
	"github.com/glimte/mmate-envelope/envelope"
)

// Encode converts env into a single buffer. It either returns a complete,
// freshly allocated buffer or an error; env is never modified.
func (c *Codec) Encode(env *envelope.Envelope) ([]byte, error) {
	if env == nil {
		return nil, &EncodeError{Op: "encode", Index: -1, Err: fmt.Errorf("envelope cannot be nil")}
	}

	messages := env.Messages()
	items := make([]contracts.MessageContract, len(messages))

	var payload bytes.Buffer
	for i, m := range messages {
		name, data, err := c.encodeItem(m)
		if err != nil {
			err.EnvelopeID = env.ID()
			err.Index = i
			return nil, err
		}

		attrs, aerr := envelope.AttributesToContract(m.Attributes())
		if aerr != nil {
			return nil, &EncodeError{Op: "convert attributes", EnvelopeID: env.ID(), Index: i, ContractName: name, Err: aerr}
		}

		items[i] = contracts.MessageContract{
			ContractName:  name,
			ContentLength: int64(len(data)),
			ContentOffset: int64(payload.Len()),
			Attributes:    attrs,
		}
		payload.Write(data)
	}

	envAttrs, err := envelope.AttributesToContract(env.Attributes())
	if err != nil {
		return nil, &EncodeError{Op: "convert attributes", EnvelopeID: env.ID(), Index: -1, Err: err}
	}

	contract := &contracts.EnvelopeContract{
		EnvelopeID: env.ID(),
		Attributes: envAttrs,
		Messages:   items,
		CreatedOn:  contracts.TimestampOf(env.CreatedOn()),
		DeliverOn:  contracts.TimestampOf(env.DeliverOn()),
	}

	metadata, err := c.envelopes.SerializeMetadata(contract)
	if err != nil {
		return nil, &EncodeError{Op: "serialize metadata", EnvelopeID: env.ID(), Index: -1, Err: err}
	}

	// The header length field is only known now, so the header is written
	// last into a buffer sized for all three regions.
	out := make([]byte, 0, contracts.HeaderSize+len(metadata)+payload.Len())
	out = contracts.NewHeader(int64(len(metadata))).AppendTo(out)
	out = append(out, metadata...)
	out = append(out, payload.Bytes()...)

	return out, nil
}

// encodeItem returns the contract name and payload bytes for m. Raw items are
// written back under their original contract name.
func (c *Codec) encodeItem(m envelope.Message) (string, []byte, *EncodeError) {
	if m.IsRaw() {
		if m.ContractName() == "" {
			return "", nil, &EncodeError{
				Op:  "resolve contract",
				Err: fmt.Errorf("%w: raw item has no contract name", ErrContractNameUnresolved),
			}
		}
		return m.ContractName(), m.Raw(), nil
	}

	name, ok := c.payloads.ContractNameForType(m.Type())
	if !ok {
		return "", nil, &EncodeError{
			Op:  "resolve contract",
			Err: fmt.Errorf("%w: no contract name for %v", ErrContractNameUnresolved, m.Type()),
		}
	}
	if registered, ok := c.payloads.TypeForContractName(name); ok && registered != m.Type() {
		return "", nil, &EncodeError{
			Op:           "resolve contract",
			ContractName: name,
			Err:          fmt.Errorf("%w: %s decodes to %v, item is %v", ErrPayloadTypeMismatch, name, registered, m.Type()),
		}
	}

	data, err := c.payloads.Serialize(m.Value())
	if err != nil {
		return "", nil, &EncodeError{Op: "serialize payload", ContractName: name, Err: err}
	}
	return name, data, nil
}
