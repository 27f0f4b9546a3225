package hdf5

import (
	"fmt"

	"github.com/robert-malhotra/h5trim/internal/message"
)

// cloneAttribute builds a writable attribute message from an attribute read
// out of another file. Fixed-size values are copied byte-for-byte with their
// datatype and dataspace. Variable-length values are decoded and re-encoded,
// since their stored bytes are global heap references into the source file.
func cloneAttribute(a *Attribute) (*message.Attribute, error) {
	if a == nil || a.msg == nil {
		return nil, fmt.Errorf("nil attribute")
	}
	if a.msg.Datatype == nil {
		return nil, fmt.Errorf("attribute has no datatype")
	}
	if a.msg.Dataspace == nil {
		return nil, fmt.Errorf("attribute has no dataspace")
	}

	if a.msg.Datatype.Class == message.ClassVarLen {
		value, err := a.Value()
		if err != nil {
			return nil, fmt.Errorf("decoding variable-length value: %w", err)
		}
		return createAttributeMessage(a.msg.Name, value)
	}

	data := make([]byte, len(a.msg.Data))
	copy(data, a.msg.Data)

	return message.NewAttribute(a.msg.Name, a.msg.Datatype, a.msg.Dataspace, data), nil
}
