package contracts

// MessageContract describes one payload item inside an encoded envelope.
// ContentOffset is relative to the start of the payload region, which begins
// immediately after the metadata section.
type MessageContract struct {
	ContractName  string              `json:"contractName"`
	ContentLength int64               `json:"contentLength"`
	ContentOffset int64               `json:"contentOffset"`
	Attributes    []AttributeContract `json:"attributes,omitempty"`
}

// End returns the offset one past the last payload byte of the item.
func (m MessageContract) End() int64 {
	return m.ContentOffset + m.ContentLength
}
