package state

import (
	"github.com/spacemeshos/go-entrypoint/common/types"
)

// journalEntry undoes a single modification of a state object.
type journalEntry struct {
	address types.Address
	revert  func(*stateObj)
}

// journal keeps modifications in the order they were applied, together with
// the number of modifications per address so that reverted objects stop being dirty.
type journal struct {
	entries []journalEntry
	dirties map[types.Address]int
}

func newJournal() *journal {
	return &journal{dirties: map[types.Address]int{}}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	j.dirties[entry.address]++
}

func (j *journal) length() int {
	return len(j.entries)
}

// revert undoes entries down to snapshot.
func (j *journal) revert(db *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		entry := j.entries[i]
		entry.revert(db.objects[entry.address])
		if j.dirties[entry.address]--; j.dirties[entry.address] == 0 {
			delete(j.dirties, entry.address)
		}
	}
	j.entries = j.entries[:snapshot]
}

func (j *journal) reset() {
	j.entries = j.entries[:0]
	clear(j.dirties)
}
