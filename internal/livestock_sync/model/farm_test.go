package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeFarm(t *testing.T) {
	tests := []struct {
		name string
		raw  RawFarm
		want Farm
	}{
		{
			name: "list typed id and phone",
			raw: RawFarm{
				"farm_unique_no": []any{"123-456"},
				"owner_name":     "Kim",
				"phone":          []any{"010-1111-2222"},
			},
			want: Farm{FarmUniqueNo: "123456", OwnerName: "Kim", Phone: "01011112222"},
		},
		{
			name: "scalar fields with whitespace",
			raw: RawFarm{
				"farm_unique_no": "  987-65 ",
				"farm_name":      " 행복농장 ",
				"owner_name":     " Lee ",
				"phone":          "010-3333-4444 ",
				"id":             "ext-1",
			},
			want: Farm{FarmUniqueNo: "98765", FarmName: "행복농장", OwnerName: "Lee", Phone: "01033334444", ExternalFarmID: "ext-1"},
		},
		{
			name: "multi valued list keeps first element",
			raw: RawFarm{
				"farm_unique_no": []string{"111-1", "222-2"},
				"owner_name":     []any{"Park", "Choi"},
				"phone":          []string{"010-0000-0001", "010-0000-0002"},
			},
			want: Farm{FarmUniqueNo: "1111", OwnerName: "Park", Phone: "01000000001"},
		},
		{
			name: "bson array read back from store",
			raw: RawFarm{
				"farm_unique_no": primitive.A{"55-5"},
				"owner_name":     "Jung",
				"phone":          primitive.A{"010-9-9"},
			},
			want: Farm{FarmUniqueNo: "555", OwnerName: "Jung", Phone: "01099"},
		},
		{
			name: "numeric id and empty list phone",
			raw: RawFarm{
				"farm_unique_no": float64(420001),
				"owner_name":     "Han",
				"phone":          []any{},
			},
			want: Farm{FarmUniqueNo: "420001", OwnerName: "Han"},
		},
		{
			name: "missing everything",
			raw:  RawFarm{},
			want: Farm{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFarm(tt.raw))
		})
	}
}

func TestFarmValidate(t *testing.T) {
	complete := Farm{FarmUniqueNo: "123456", OwnerName: "Kim", Phone: "01011112222"}
	require.NoError(t, complete.Validate())

	err := Farm{FarmName: "빈농장", OwnerName: "Kim"}.Validate()
	require.Error(t, err)

	var incomplete *IncompleteFarmError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "빈농장", incomplete.FarmName)
	assert.Equal(t, []string{"farm_unique_no", "phone"}, incomplete.Missing)
	assert.Contains(t, err.Error(), "farm_unique_no, phone")
}

func TestCredentialsFor(t *testing.T) {
	routing := CredentialRouting{
		Default:     CredentialPair{ID: "default-id", Key: "default-key"},
		Institution: CredentialPair{ID: "cnu-id", Key: "cnu-key"},
	}

	assert.Equal(t, routing.Institution, routing.CredentialsFor("충남대학교 동물자원농장"))
	assert.Equal(t, routing.Default, routing.CredentialsFor("행복한우농장"))
	assert.Equal(t, routing.Default, routing.CredentialsFor(""))

	// same input, same answer
	assert.Equal(t, routing.CredentialsFor("충남대학교"), routing.CredentialsFor("충남대학교"))

	routing.InstitutionMarker = "Test Univ"
	assert.Equal(t, routing.Institution, routing.CredentialsFor("Test Univ Farm"))
	assert.Equal(t, routing.Default, routing.CredentialsFor("충남대학교"))
}

func TestAllHistoryOptions(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, AllHistoryOptions())
	assert.Equal(t, "opt_3", OptionKey(3))
}
