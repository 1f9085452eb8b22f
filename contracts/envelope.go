package contracts

// EnvelopeContract is the metadata section of an encoded envelope.
// A nil timestamp is unset: no creation time, or no delivery delay.
type EnvelopeContract struct {
	EnvelopeID string              `json:"envelopeId"`
	Attributes []AttributeContract `json:"attributes,omitempty"`
	Messages   []MessageContract   `json:"messages,omitempty"`
	CreatedOn  *Timestamp          `json:"createdOn,omitempty"`
	DeliverOn  *Timestamp          `json:"deliverOn,omitempty"`
}

// PayloadLength returns the total number of payload bytes described by the
// message contracts.
func (c *EnvelopeContract) PayloadLength() int64 {
	var total int64
	for _, m := range c.Messages {
		total += m.ContentLength
	}
	return total
}
