package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	mmate "github.com/glimte/mmate-envelope"
	"github.com/glimte/mmate-envelope/codec"
	"github.com/glimte/mmate-envelope/contracts"
	"github.com/glimte/mmate-envelope/envelope"
	"github.com/glimte/mmate-envelope/serialization"
)

type headerReport struct {
	FormatVersion  int32  `json:"formatVersion"`
	Current        bool   `json:"current"`
	MetadataLength int64  `json:"metadataLength"`
	Reserved       int64  `json:"reserved"`
	TotalSize      int    `json:"totalSize"`
	PayloadSize    int64  `json:"payloadSize"`
	Prefix         string `json:"prefix"`
}

type itemReport struct {
	Index        int    `json:"index"`
	ContractName string `json:"contractName"`
	Kind         string `json:"kind"`
	Offset       int64  `json:"offset"`
	Length       int64  `json:"length"`
	Reason       string `json:"reason,omitempty"`
	Value        any    `json:"value,omitempty"`
}

type referenceReport struct {
	EnvelopeID string `json:"envelopeId"`
	Container  string `json:"container"`
	Location   string `json:"location"`
}

type sniffReport struct {
	Kind       string           `json:"kind"`
	Reference  *referenceReport `json:"reference,omitempty"`
	EnvelopeID string           `json:"envelopeId,omitempty"`
	CreatedOn  *time.Time       `json:"createdOn,omitempty"`
	DeliverOn  *time.Time       `json:"deliverOn,omitempty"`
	Attributes map[string]any   `json:"attributes,omitempty"`
	Items      []itemReport     `json:"items,omitempty"`
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func inspectHeader(buf []byte) (headerReport, error) {
	h, err := contracts.ReadHeader(buf)
	if err != nil {
		return headerReport{}, err
	}
	prefix := buf[:min(len(buf), 8)]
	return headerReport{
		FormatVersion:  h.FormatVersion,
		Current:        h.IsCurrent(),
		MetadataLength: h.MetadataLength,
		Reserved:       h.Reserved,
		TotalSize:      len(buf),
		PayloadSize:    int64(len(buf)) - contracts.HeaderSize - h.MetadataLength,
		Prefix:         hex.EncodeToString(prefix),
	}, nil
}

// inspectMetadata returns the metadata contract, or its CBOR diagnostic
// notation when diag is set.
func inspectMetadata(buf []byte, format string, diag bool) (any, error) {
	h, err := contracts.ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.MetadataLength < 0 || h.MetadataLength > int64(len(buf)-contracts.HeaderSize) {
		return nil, fmt.Errorf("%w: metadata length %d exceeds buffer", codec.ErrCorruptEnvelope, h.MetadataLength)
	}
	metadata := buf[contracts.HeaderSize : contracts.HeaderSize+h.MetadataLength]

	if diag {
		if format != serialization.FormatCBOR {
			return nil, fmt.Errorf("--diag requires cbor metadata, got %s", format)
		}
		return serialization.Diagnose(metadata)
	}

	s, err := serialization.NewEnvelopeSerializer(format)
	if err != nil {
		return nil, err
	}
	return s.DeserializeMetadata(metadata)
}

func sniff(ctx context.Context, client *mmate.Client, buf []byte, metadataFormat string, resolve bool) (sniffReport, error) {
	ref, ok, err := codec.DecodeReference(buf)
	if err != nil {
		return sniffReport{}, err
	}
	refReport := &referenceReport{EnvelopeID: ref.EnvelopeID, Container: ref.Container, Location: ref.Location}
	if ok && !resolve {
		return sniffReport{Kind: "reference", Reference: refReport}, nil
	}

	var env *envelope.Envelope
	if ok {
		env, err = client.Checker().Resolve(ctx, ref)
	} else {
		env, err = client.Codec().Decode(buf)
	}
	if err != nil {
		return sniffReport{}, err
	}

	report := sniffReport{
		Kind:       "envelope",
		EnvelopeID: env.ID(),
		Attributes: attributeMap(env.Attributes()),
	}
	if ok {
		report.Reference = refReport
	}
	if created := env.CreatedOn(); !created.IsZero() {
		report.CreatedOn = &created
	}
	if env.HasDeliveryDelay() {
		deliver := env.DeliverOn()
		report.DeliverOn = &deliver
	}

	offsets, err := itemOffsets(buf, metadataFormat, ok)
	if err != nil {
		return sniffReport{}, err
	}
	for _, m := range env.Messages() {
		item := itemReport{
			Index:        m.Index(),
			ContractName: m.ContractName(),
			Kind:         m.Kind().String(),
		}
		if m.Index() < len(offsets) {
			item.Offset = offsets[m.Index()].ContentOffset
			item.Length = offsets[m.Index()].ContentLength
		}
		if m.IsRaw() {
			if reason := m.Reason(); reason != nil {
				item.Reason = reason.Error()
			}
		} else {
			item.Value = m.Value()
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// itemOffsets re-reads the metadata to recover offsets, which the decoded
// envelope does not carry. Offsets are not available for resolved references.
func itemOffsets(buf []byte, format string, resolved bool) ([]contracts.MessageContract, error) {
	if resolved {
		return nil, nil
	}
	contract, err := inspectMetadata(buf, format, false)
	if err != nil {
		return nil, err
	}
	return contract.(*contracts.EnvelopeContract).Messages, nil
}

func attributeMap(attrs envelope.Attributes) map[string]any {
	if attrs.Len() == 0 {
		return nil
	}
	out := make(map[string]any, attrs.Len())
	for _, a := range attrs.All() {
		out[a.Key] = a.Value
	}
	return out
}
