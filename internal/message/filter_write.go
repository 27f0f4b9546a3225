package message

import (
	"github.com/robert-malhotra/h5trim/internal/binary"
)

// NewFilterPipeline creates a version 2 filter pipeline message.
// Filters must be listed in encode order (the order they are applied
// when writing a chunk).
func NewFilterPipeline(filters []FilterInfo) *FilterPipeline {
	return &FilterPipeline{
		Version: 2,
		Filters: filters,
	}
}

// Serialize writes the FilterPipeline to the writer using the version 2
// format: no reserved bytes, no name padding, name length present only
// for filter IDs >= 256.
func (m *FilterPipeline) Serialize(w *binary.Writer) error {
	if err := w.WriteUint8(2); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(len(m.Filters))); err != nil {
		return err
	}

	for _, f := range m.Filters {
		if err := w.WriteUint16(f.ID); err != nil {
			return err
		}

		name := filterNameBytes(f)
		if f.ID >= 256 {
			if err := w.WriteUint16(uint16(len(name))); err != nil {
				return err
			}
		}

		if err := w.WriteUint16(f.Flags); err != nil {
			return err
		}
		if err := w.WriteUint16(uint16(len(f.ClientData))); err != nil {
			return err
		}

		if f.ID >= 256 {
			if err := w.WriteBytes(name); err != nil {
				return err
			}
		}

		for _, cd := range f.ClientData {
			if err := w.WriteUint32(cd); err != nil {
				return err
			}
		}
	}

	return nil
}

// SerializedSize returns the size in bytes when serialized.
func (m *FilterPipeline) SerializedSize(w *binary.Writer) int {
	size := 2 // version + filter count

	for _, f := range m.Filters {
		size += 6 // ID + flags + client data count
		if f.ID >= 256 {
			size += 2 + len(filterNameBytes(f))
		}
		size += 4 * len(f.ClientData)
	}

	return size
}

// filterNameBytes returns the null-terminated name for custom filters
// (ID >= 256); standard filters carry no name in version 2.
func filterNameBytes(f FilterInfo) []byte {
	if f.ID < 256 {
		return nil
	}
	name := f.Name
	if name == "" {
		name = "unknown"
	}
	return append([]byte(name), 0)
}
