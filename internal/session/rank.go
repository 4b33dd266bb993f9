package session

import (
	"sort"

	"github.com/xelth-com/loadboard/internal/models"
)

// Rank orders candidate sessions for the same key and splits them into the one to keep
// and the duplicates to drop. Preference: the protected id, then sessions with progress,
// then the newest. Equal candidates keep their input order.
func Rank(sessions []models.LoadSession, protectedID string) (keep models.LoadSession, drop []models.LoadSession, ok bool) {
	if len(sessions) == 0 {
		return models.LoadSession{}, nil, false
	}
	ranked := make([]models.LoadSession, len(sessions))
	copy(ranked, sessions)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if protectedID != "" && (a.ID == protectedID) != (b.ID == protectedID) {
			return a.ID == protectedID
		}
		if a.HasProgress() != b.HasProgress() {
			return a.HasProgress()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return ranked[0], ranked[1:], true
}

// duplicateGroups buckets sessions by destination, time and owner
func duplicateGroups(sessions []models.LoadSession) map[string][]models.LoadSession {
	groups := make(map[string][]models.LoadSession)
	for _, s := range sessions {
		key := s.OrderKey() + "_" + s.OwnerKey()
		groups[key] = append(groups[key], s)
	}
	return groups
}
