// Copyright FootAnalytics
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryForIsTotal(t *testing.T) {
	t.Parallel()

	for _, dataType := range All() {
		category, ok := CategoryFor(dataType)
		assert.True(t, ok, "data type %q has no category", dataType)
		assert.NotEmpty(t, category)
	}
}

func TestTypesForCategoryInvertsCategoryFor(t *testing.T) {
	t.Parallel()

	seen := make(map[DataType]int)
	for _, category := range AllCategories() {
		for _, dataType := range TypesForCategory(category) {
			seen[dataType]++

			mapped, ok := CategoryFor(dataType)
			assert.True(t, ok)
			assert.Equal(t, category, mapped)
		}
	}

	assert.Len(t, seen, len(All()))
	for dataType, count := range seen {
		assert.Equal(t, 1, count, "data type %q appears in more than one category", dataType)
	}
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		dataType          DataType
		expectedValid     bool
		expectedRealtime  bool
		expectedSensitive bool
		expectedCategory  Category
	}{
		"match schedule is a plain pull type": {
			dataType:         MatchSchedule,
			expectedValid:    true,
			expectedCategory: CategoryMatch,
		},
		"live scores are realtime but not sensitive": {
			dataType:         LiveScores,
			expectedValid:    true,
			expectedRealtime: true,
			expectedCategory: CategoryMatch,
		},
		"gps tracking is realtime and sensitive": {
			dataType:          GPSTracking,
			expectedValid:     true,
			expectedRealtime:  true,
			expectedSensitive: true,
			expectedCategory:  CategoryTracking,
		},
		"injury data is sensitive only": {
			dataType:          InjuryData,
			expectedValid:     true,
			expectedSensitive: true,
			expectedCategory:  CategoryPlayer,
		},
		"unknown type is rejected": {
			dataType: DataType("SHOE_SIZES"),
		},
	}

	for testName, test := range testCases {
		test := test
		t.Run(testName, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expectedValid, IsValid(test.dataType))
			assert.Equal(t, test.expectedRealtime, IsRealtime(test.dataType))
			assert.Equal(t, test.expectedSensitive, IsSensitive(test.dataType))

			category, ok := CategoryFor(test.dataType)
			assert.Equal(t, test.expectedValid, ok)
			assert.Equal(t, test.expectedCategory, category)
		})
	}
}

func TestUnknownCategoryHasNoTypes(t *testing.T) {
	t.Parallel()

	assert.Empty(t, TypesForCategory(Category("weather")))
}
