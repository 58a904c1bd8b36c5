package models

// SnapshotVersion is written into every persisted journal snapshot.
const SnapshotVersion = 1

// JournalSnapshot is the persistence envelope of the in-memory record store.
type JournalSnapshot struct {
	Version   int         `json:"version"`
	Questions []*Question `json:"questions"`
	Entries   []*Entry    `json:"entries"`
	Responses []*Response `json:"responses"`
}

func NewJournalSnapshot() *JournalSnapshot {
	return &JournalSnapshot{
		Version:   SnapshotVersion,
		Questions: make([]*Question, 0),
		Entries:   make([]*Entry, 0),
		Responses: make([]*Response, 0),
	}
}

func (s *JournalSnapshot) Len() int {
	return len(s.Questions) + len(s.Entries) + len(s.Responses)
}
