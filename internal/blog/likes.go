package blog

import (
	"encoding/json"
	"slices"
)

// LikeSet holds the IDs of articles the local user has liked, stored as a
// JSON array. Membership is containment in the array.
type LikeSet struct {
	ids []string
}

// NewLikeSet builds a set from ids.
func NewLikeSet(ids ...string) LikeSet {
	return LikeSet{ids: slices.Clone(ids)}
}

// Has reports whether articleID is liked.
func (s LikeSet) Has(articleID string) bool {
	return slices.Contains(s.ids, articleID)
}

// Len returns the number of liked articles.
func (s LikeSet) Len() int { return len(s.ids) }

// IDs returns a copy of the liked IDs in insertion order.
func (s LikeSet) IDs() []string { return slices.Clone(s.ids) }

// with returns a copy including articleID.
func (s LikeSet) with(articleID string) LikeSet {
	if s.Has(articleID) {
		return NewLikeSet(s.ids...)
	}
	return LikeSet{ids: append(slices.Clone(s.ids), articleID)}
}

// without returns a copy with every occurrence of articleID removed.
func (s LikeSet) without(articleID string) LikeSet {
	out := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		if id != articleID {
			out = append(out, id)
		}
	}
	return LikeSet{ids: out}
}

func (s LikeSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

func (s *LikeSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.ids = ids
	return nil
}
