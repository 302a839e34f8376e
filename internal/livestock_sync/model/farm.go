package model

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Farm 농장 정보 (FarmInfo collection)
type Farm struct {
	FarmUniqueNo   string `bson:"farm_unique_no" json:"farm_unique_no"`
	FarmName       string `bson:"farm_name" json:"farm_name"`
	OwnerName      string `bson:"owner_name" json:"owner_name"`
	Phone          string `bson:"phone" json:"phone"`
	ExternalFarmID string `bson:"external_farm_id,omitempty" json:"external_farm_id,omitempty"`
}

// RawFarm is a farm record as delivered by the farm-data source or read back from legacy
// documents. Identifying fields may arrive as a scalar or as a list.
type RawFarm map[string]any

// NormalizeFarm turns a raw record into a Farm: list-typed fields collapse to their first
// element, separators are stripped from id and phone, and whitespace is trimmed.
func NormalizeFarm(raw RawFarm) Farm {
	return Farm{
		FarmUniqueNo:   stripSeparators(firstValue(raw["farm_unique_no"])),
		FarmName:       strings.TrimSpace(firstValue(raw["farm_name"])),
		OwnerName:      strings.TrimSpace(firstValue(raw["owner_name"])),
		Phone:          stripSeparators(firstValue(raw["phone"])),
		ExternalFarmID: strings.TrimSpace(firstValue(firstNonNil(raw["external_farm_id"], raw["id"]))),
	}
}

// IncompleteFarmError reports a farm that lacks one of the fields the animal-list query needs.
type IncompleteFarmError struct {
	FarmName string
	Missing  []string
}

func (e *IncompleteFarmError) Error() string {
	return fmt.Sprintf("farm %q is missing %s", e.FarmName, strings.Join(e.Missing, ", "))
}

// Validate returns an *IncompleteFarmError when id, owner or phone is empty.
func (f Farm) Validate() error {
	var missing []string
	if f.FarmUniqueNo == "" {
		missing = append(missing, "farm_unique_no")
	}
	if f.OwnerName == "" {
		missing = append(missing, "owner_name")
	}
	if f.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return &IncompleteFarmError{FarmName: f.FarmName, Missing: missing}
	}
	return nil
}

func stripSeparators(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "-", ""))
}

func firstNonNil(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// firstValue renders v as a string. Slices of any element type (including bson primitive.A)
// collapse to their first element.
func firstValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers; farm numbers are integers in practice
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() == 0 {
			return ""
		}
		return firstValue(rv.Index(0).Interface())
	}
	return fmt.Sprint(v)
}
