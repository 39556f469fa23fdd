// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package catalog

import (
	"slices"
)

// DataType identifies one synchronizable record kind.
type DataType string

const (
	MatchSchedule        DataType = "MATCH_SCHEDULE"
	MatchEvents          DataType = "MATCH_EVENTS"
	LiveScores           DataType = "LIVE_SCORES"
	PlayerProfiles       DataType = "PLAYER_PROFILES"
	PlayerStatistics     DataType = "PLAYER_STATISTICS"
	InjuryData           DataType = "INJURY_DATA"
	TeamProfiles         DataType = "TEAM_PROFILES"
	TeamStatistics       DataType = "TEAM_STATISTICS"
	GPSTracking          DataType = "GPS_TRACKING"
	BiometricData        DataType = "BIOMETRIC_DATA"
	VideoMetadata        DataType = "VIDEO_METADATA"
	CompetitionStandings DataType = "COMPETITION_STANDINGS"
	TransferData         DataType = "TRANSFER_DATA"
)

// Category groups data types by the part of the game they describe.
type Category string

const (
	CategoryMatch       Category = "match"
	CategoryPlayer      Category = "player"
	CategoryTeam        Category = "team"
	CategoryTracking    Category = "tracking"
	CategoryPerformance Category = "performance"
	CategoryCompetition Category = "competition"
	CategoryAnalysis    Category = "analysis"
)

// categories assigns every data type to exactly one category. Keep this map
// total: CategoryFor and TypesForCategory rely on it.
var categories = map[DataType]Category{
	MatchSchedule:        CategoryMatch,
	MatchEvents:          CategoryMatch,
	LiveScores:           CategoryMatch,
	PlayerProfiles:       CategoryPlayer,
	PlayerStatistics:     CategoryPlayer,
	InjuryData:           CategoryPlayer,
	TeamProfiles:         CategoryTeam,
	TeamStatistics:       CategoryTeam,
	GPSTracking:          CategoryTracking,
	BiometricData:        CategoryPerformance,
	VideoMetadata:        CategoryAnalysis,
	CompetitionStandings: CategoryCompetition,
	TransferData:         CategoryPlayer,
}

// realtimeTypes lists the data types that providers push as they happen
// instead of exposing them for periodic pulls.
var realtimeTypes = map[DataType]struct{}{
	LiveScores:    {},
	MatchEvents:   {},
	GPSTracking:   {},
	BiometricData: {},
}

// sensitiveTypes lists the data types carrying personal or medical
// information that require restricted handling downstream.
var sensitiveTypes = map[DataType]struct{}{
	InjuryData:    {},
	BiometricData: {},
	GPSTracking:   {},
}

// All returns every known data type in a stable order.
func All() []DataType {
	types := make([]DataType, 0, len(categories))
	for dataType := range categories {
		types = append(types, dataType)
	}

	slices.Sort(types)
	return types
}

// AllCategories returns every known category in a stable order.
func AllCategories() []Category {
	seen := make(map[Category]struct{}, len(categories))
	all := make([]Category, 0, len(categories))
	for _, category := range categories {
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		all = append(all, category)
	}

	slices.Sort(all)
	return all
}

// IsValid reports whether dataType is part of the catalog.
func IsValid(dataType DataType) bool {
	_, ok := categories[dataType]
	return ok
}

// CategoryFor returns the category of dataType. The boolean is false when
// the data type is not part of the catalog.
func CategoryFor(dataType DataType) (Category, bool) {
	category, ok := categories[dataType]
	return category, ok
}

// TypesForCategory returns all data types belonging to category in a stable
// order. It is the inverse of CategoryFor.
func TypesForCategory(category Category) []DataType {
	types := make([]DataType, 0)
	for dataType, dataCategory := range categories {
		if dataCategory == category {
			types = append(types, dataType)
		}
	}

	slices.Sort(types)
	return types
}

// IsRealtime reports whether dataType is delivered as a realtime push feed.
func IsRealtime(dataType DataType) bool {
	_, ok := realtimeTypes[dataType]
	return ok
}

// IsSensitive reports whether dataType carries personal or medical data.
func IsSensitive(dataType DataType) bool {
	_, ok := sensitiveTypes[dataType]
	return ok
}
