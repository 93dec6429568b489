package estimates

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UUIDListJSON encodes ids as a JSON array of strings. A nil or empty list
// encodes as "[]".
func UUIDListJSON(ids []uuid.UUID) datatypes.JSON {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	b, _ := json.Marshal(out)
	return datatypes.JSON(b)
}

// DecodeUUIDList is the inverse of UUIDListJSON. Unparseable entries are skipped.
func DecodeUUIDList(raw datatypes.JSON) []uuid.UUID {
	if len(raw) == 0 {
		return nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil
	}
	out := make([]uuid.UUID, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
