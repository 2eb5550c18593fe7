package reader

import "nmoscene/internal/nmoerr"

// SeekIdentifier implements the identifier linked-list walk (§4.C). Inside
// the payload, identifier records are pairs of DWORDs [identifier, next_pos];
// next_pos == 0 means "no next in this chain; search from position 0".
//
// On success, prevIdentifierPos is updated to the matching record's position
// and the cursor is positioned two DWORDs past it, ready to read the fields
// the identifier gates. On failure the cursor and prevIdentifierPos are left
// untouched and ErrNotFound is returned — which is not a hard failure at the
// call site: an absent identifier means "apply the documented default".
func (r *Reader) SeekIdentifier(id uint32) error {
	dataSize := r.dataSizeDwords()

	var j int
	if r.prevIdentifierPos >= 0 && r.prevIdentifierPos < dataSize-1 {
		j = int(r.dwordAt(r.prevIdentifierPos + 1))
	}

	i, err := r.walkChain(j, dataSize, id)
	if err != nil {
		return err
	}
	r.prevIdentifierPos = i
	r.cursor = i + 2
	return nil
}

// walkChain scans from start (or, if start == 0, directly from position 0)
// following next_pos links until id is found or the chain runs out. If the
// chain's next_pos reaches 0 mid-walk, the scan restarts from position 0 (the
// "search from position 0" fallback), guarded against looping forever by
// bounding total hops to dataSize.
func (r *Reader) walkChain(start, dataSize int, id uint32) (int, error) {
	scanFrom := func(from int) (int, bool) {
		i := from
		for hops := 0; hops <= dataSize; hops++ {
			if i < 0 || i >= dataSize {
				return 0, false
			}
			if r.dwordAt(i) == id {
				return i, true
			}
			if i+1 >= dataSize {
				return 0, false
			}
			next := int(r.dwordAt(i + 1))
			if next == 0 {
				return 0, false
			}
			i = next
		}
		return 0, false
	}

	if start != 0 {
		if i, ok := scanFrom(start); ok {
			return i, nil
		}
	}
	if i, ok := scanFrom(0); ok {
		return i, nil
	}
	return 0, nmoerr.NewCause("seek_identifier: identifier not found", -1, nmoerr.ErrNotFound)
}
