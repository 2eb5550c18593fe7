package chunk

// GUID is the wire GUID used throughout the format: manager guids, plugin
// dependency categories, and parameter guids are all 2 DWORDs (8 bytes) on
// the wire, not a 16-byte UUID.
type GUID struct {
	D1, D2 uint32
}

func (g GUID) IsZero() bool { return g.D1 == 0 && g.D2 == 0 }
