package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Department represents a high-level organizational unit.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// DepartmentRef is the embedded form used in claims, users and documents.
type DepartmentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Ref returns the embedded form of d.
func (d Department) Ref() *DepartmentRef {
	return &DepartmentRef{ID: d.ID, Name: d.Name}
}

// UnmarshalJSON accepts the object form, a bare id, or a bare name. Ids
// may be numbers or numeric strings.
func (d *DepartmentRef) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var id json.Number
	if err := json.Unmarshal(data, &id); err == nil {
		parsed, err := parseDepartmentID(id)
		if err != nil {
			return err
		}
		*d = DepartmentRef{ID: parsed}
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		name = strings.TrimSpace(name)
		if parsed, err := strconv.ParseInt(name, 10, 64); err == nil {
			*d = DepartmentRef{ID: parsed}
			return nil
		}
		*d = DepartmentRef{Name: name}
		return nil
	}

	var decoded struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	ref := DepartmentRef{Name: decoded.Name}
	if len(decoded.ID) > 0 {
		var idRef DepartmentRef
		if err := idRef.UnmarshalJSON(decoded.ID); err != nil {
			return fmt.Errorf("department id: %w", err)
		}
		ref.ID = idRef.ID
	}
	*d = ref
	return nil
}

func parseDepartmentID(n json.Number) (int64, error) {
	if id, err := n.Int64(); err == nil {
		return id, nil
	}
	f, err := n.Float64()
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("department id %s is not an integer", n)
	}
	return int64(f), nil
}
