package config

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProvinces(t *testing.T) {
	provinces := GetProvinces()

	require.Len(t, provinces, len(RegionHierarchy))
	assert.True(t, sort.StringsAreSorted(provinces))
	assert.Contains(t, provinces, "서울특별시")
	assert.Contains(t, provinces, "제주특별자치도")
}

func TestGetDistricts(t *testing.T) {
	tests := []struct {
		name         string
		province     string
		expectEmpty  bool
		wantDistrict string
		wantCode     string
	}{
		{
			name:         "Seoul districts",
			province:     "서울특별시",
			wantDistrict: "강남구",
			wantCode:     "11680",
		},
		{
			name:         "Jeju districts",
			province:     "제주특별자치도",
			wantDistrict: "서귀포시",
			wantCode:     "50130",
		},
		{
			name:        "Unknown province",
			province:    "한라산도",
			expectEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			districts := GetDistricts(tt.province)
			if tt.expectEmpty {
				assert.Empty(t, districts)
				return
			}
			require.NotEmpty(t, districts)

			names := make([]string, 0, len(districts))
			var code string
			for _, d := range districts {
				names = append(names, d.Name)
				if d.Name == tt.wantDistrict {
					code = d.Code
				}
			}
			assert.True(t, sort.StringsAreSorted(names))
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestGetRegionCode(t *testing.T) {
	tests := []struct {
		name     string
		province string
		district string
		want     string
	}{
		{"Gangnam", "서울특별시", "강남구", "11680"},
		{"Suwon", "경기도", "수원시", "41110"},
		{"Unknown district", "서울특별시", "없는구", ""},
		{"Unknown province", "한라산도", "강남구", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetRegionCode(tt.province, tt.district))
		})
	}
}

func TestRegionCodesAreFiveDigits(t *testing.T) {
	for province, districts := range RegionHierarchy {
		for district, code := range districts {
			assert.Len(t, code, 5, "%s %s", province, district)
		}
	}
}
