package directory

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-gateway/internal/domain"
)

func raw(id, jurisdiction, last, first string) domain.RawSupervisorRecord {
	return domain.RawSupervisorRecord{
		ID:                   id,
		Jurisdiction:         jurisdiction,
		LastName:             last,
		FirstName:            first,
		Phone:                "555-" + id,
		IdentificationNumber: "X" + id,
	}
}

func TestNormalizeExample(t *testing.T) {
	records := []domain.RawSupervisorRecord{
		{ID: "2", Jurisdiction: "B", LastName: "Lee", FirstName: "Ann", Phone: "1", IdentificationNumber: "X2"},
		{ID: "1", Jurisdiction: "A", LastName: "Choi", FirstName: "Sam", Phone: "2", IdentificationNumber: "X1"},
	}

	got := Normalize(records)

	assert.Equal(t, []domain.Supervisor{
		{ID: "1", Name: "A - Choi, Sam", Phone: "2", IdentificationNumber: "X1"},
		{ID: "2", Name: "B - Lee, Ann", Phone: "1", IdentificationNumber: "X2"},
	}, got)
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeKeyPrecedence(t *testing.T) {
	records := []domain.RawSupervisorRecord{
		raw("1", "B", "Adams", "Zed"),
		raw("2", "A", "Young", "Amy"),
		raw("3", "A", "Young", "Aaron"),
		raw("4", "A", "Baker", "Zoe"),
	}

	got := Normalize(records)

	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids)
}

func TestNormalizeOrdinalComparison(t *testing.T) {
	// Ordinal order puts upper case before lower case.
	records := []domain.RawSupervisorRecord{
		raw("1", "a", "Lee", "Ann"),
		raw("2", "B", "Lee", "Ann"),
	}

	got := Normalize(records)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
}

func TestNormalizeStableForTies(t *testing.T) {
	records := []domain.RawSupervisorRecord{
		raw("c", "A", "Lee", "Ann"),
		raw("a", "A", "Lee", "Ann"),
		raw("b", "A", "Lee", "Ann"),
	}

	got := Normalize(records)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "b", got[2].ID)
}

func TestNormalizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pick := func(vals ...string) string { return vals[rng.Intn(len(vals))] }

	for round := 0; round < 50; round++ {
		n := rng.Intn(40)
		records := make([]domain.RawSupervisorRecord, n)
		for i := range records {
			records[i] = raw(fmt.Sprintf("%d", i), pick("A", "B", "C"), pick("Lee", "Choi", "Kim"), pick("Ann", "Sam", "Jo"))
		}
		input := append([]domain.RawSupervisorRecord(nil), records...)

		got := Normalize(records)

		require.Len(t, got, n, "no well-formed record may be dropped")
		assert.Equal(t, input, records, "input must not be mutated")
		assert.Equal(t, got, Normalize(records), "normalize must be idempotent")

		byID := make(map[string]domain.RawSupervisorRecord, n)
		pos := make(map[string]int, n)
		for i, r := range records {
			byID[r.ID] = r
			pos[r.ID] = i
		}
		for _, s := range got {
			r := byID[s.ID]
			assert.Equal(t, r.Jurisdiction+" - "+r.LastName+", "+r.FirstName, s.Name)
			assert.Equal(t, r.Phone, s.Phone)
			assert.Equal(t, r.IdentificationNumber, s.IdentificationNumber)
		}

		expected := append([]domain.RawSupervisorRecord(nil), records...)
		sort.SliceStable(expected, func(i, j int) bool {
			return compareRecords(expected[i], expected[j]) < 0
		})
		for i, s := range got {
			assert.Equal(t, expected[i].ID, s.ID)
			if i > 0 {
				prev := byID[got[i-1].ID]
				cur := byID[s.ID]
				if compareRecords(prev, cur) == 0 {
					assert.Less(t, pos[prev.ID], pos[cur.ID], "ties must keep input order")
				}
			}
		}
	}
}

func TestNormalizeReportDefects(t *testing.T) {
	records := []domain.RawSupervisorRecord{
		raw("1", "B", "Lee", "Ann"),
		{ID: "2", Jurisdiction: "A", LastName: "Choi"},
		raw("3", "A", "Kim", "Jo"),
		raw("1", "A", "Adams", "Al"),
	}

	got, defects := NormalizeReport(records)

	require.Len(t, got, 3, "only the record with missing fields is left out")
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "A - Adams, Al", got[0].Name)
	assert.Equal(t, "3", got[1].ID)
	assert.Equal(t, "1", got[2].ID)
	assert.Equal(t, "B - Lee, Ann", got[2].Name)

	require.Len(t, defects, 2)
	assert.Equal(t, Defect{Index: 1, ID: "2", Reason: DefectMissingFields, MissingFields: []string{"firstName", "phone", "identificationNumber"}}, defects[0])
	assert.Equal(t, Defect{Index: 0, ID: "1", Reason: DefectDuplicateID}, defects[1])
}

func TestNormalizeKeepsRepeatedIDs(t *testing.T) {
	records := []domain.RawSupervisorRecord{
		raw("7", "B", "Lee", "Ann"),
		raw("7", "A", "Choi", "Sam"),
	}

	got := Normalize(records)

	require.Len(t, got, len(records))
	assert.Equal(t, "A - Choi, Sam", got[0].Name)
	assert.Equal(t, "B - Lee, Ann", got[1].Name)

	first, ok := Find(got, "7")
	require.True(t, ok)
	assert.Equal(t, "A - Choi, Sam", first.Name, "lookup returns the first match in display order")
}

func TestFind(t *testing.T) {
	snapshot := Normalize([]domain.RawSupervisorRecord{raw("1", "A", "Choi", "Sam")})

	s, ok := Find(snapshot, "1")
	require.True(t, ok)
	assert.Equal(t, "A - Choi, Sam", s.Name)

	_, ok = Find(snapshot, "missing")
	assert.False(t, ok)
}
