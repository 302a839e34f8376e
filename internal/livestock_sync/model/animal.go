package model

import (
	"fmt"
	"time"
)

// AnimalStatus 개체 상태
type AnimalStatus string

const (
	StatusRaising     AnimalStatus = "사육" // raising, seen in a farm's animal list
	StatusSlaughtered AnimalStatus = "도축"
	StatusUnknown     AnimalStatus = ""
)

// HistoryOptionCount 이력 조회 옵션 수 (optionNo 1..9)
const HistoryOptionCount = 9

// Animal 개체 마스터 (AnimalMaster collection)
//
// LastUpdated is nil until the first detail refresh completes and is written only by it.
type Animal struct {
	CattleNo    string       `bson:"cattleNo" json:"cattleNo"`
	FarmID      string       `bson:"farm_id" json:"farm_id"`
	Status      AnimalStatus `bson:"status,omitempty" json:"status,omitempty"`
	LastUpdated *time.Time   `bson:"last_updated,omitempty" json:"last_updated,omitempty"`
}

// HistoryBundle maps "opt_N" to the parsed payload of history option N. Options whose
// fetch failed are absent.
type HistoryBundle map[string]map[string]any

// AnimalHistoryDetail 개체 이력 상세 (AnimalHistoryDetail collection)
type AnimalHistoryDetail struct {
	CattleNo    string         `bson:"cattleNo" json:"cattleNo"`
	History     HistoryBundle  `bson:"history" json:"history"`
	GradeResult map[string]any `bson:"grade_result,omitempty" json:"grade_result,omitempty"`
	Status      AnimalStatus   `bson:"status" json:"status"`
	LastUpdated time.Time      `bson:"last_updated" json:"last_updated"`
}

// OptionKey returns the bundle key for a history option number.
func OptionKey(option int) string {
	return fmt.Sprintf("opt_%d", option)
}

// AllHistoryOptions returns option numbers 1..9.
func AllHistoryOptions() []int {
	opts := make([]int, 0, HistoryOptionCount)
	for i := 1; i <= HistoryOptionCount; i++ {
		opts = append(opts, i)
	}
	return opts
}
