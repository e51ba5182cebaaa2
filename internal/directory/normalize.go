// Package directory turns the upstream supervisor directory into the canonical,
// sorted list served to clients.
package directory

import (
	"cmp"
	"slices"

	"notify-gateway/internal/domain"
)

// DefectReason explains why a raw record was reported.
type DefectReason string

const (
	DefectMissingFields DefectReason = "missing_fields"
	DefectDuplicateID   DefectReason = "duplicate_id"
)

// Defect describes one reported raw record. Records with missing fields are
// left out of the snapshot; duplicate ids are reported but kept.
type Defect struct {
	Index         int
	ID            string
	Reason        DefectReason
	MissingFields []string
}

// Normalize sorts records by jurisdiction, last name then first name (ordinal,
// ascending, stable) and maps them to canonical supervisors. Records with
// missing fields are dropped; use NormalizeReport to see them.
func Normalize(records []domain.RawSupervisorRecord) []domain.Supervisor {
	out, _ := NormalizeReport(records)
	return out
}

// NormalizeReport is Normalize plus the list of defects. Every well-formed
// record appears in the output, including repeated ids. The input slice is not
// modified.
func NormalizeReport(records []domain.RawSupervisorRecord) ([]domain.Supervisor, []Defect) {
	type indexed struct {
		index  int
		record domain.RawSupervisorRecord
	}

	var defects []Defect
	valid := make([]indexed, 0, len(records))
	for i, r := range records {
		if missing := r.MissingFields(); len(missing) > 0 {
			defects = append(defects, Defect{Index: i, ID: r.ID, Reason: DefectMissingFields, MissingFields: missing})
			continue
		}
		valid = append(valid, indexed{index: i, record: r})
	}

	slices.SortStableFunc(valid, func(a, b indexed) int {
		return compareRecords(a.record, b.record)
	})

	out := make([]domain.Supervisor, 0, len(valid))
	seen := make(map[string]struct{}, len(valid))
	for _, v := range valid {
		if _, dup := seen[v.record.ID]; dup {
			defects = append(defects, Defect{Index: v.index, ID: v.record.ID, Reason: DefectDuplicateID})
		}
		seen[v.record.ID] = struct{}{}
		out = append(out, toSupervisor(v.record))
	}
	return out, defects
}

func compareRecords(a, b domain.RawSupervisorRecord) int {
	if c := cmp.Compare(a.Jurisdiction, b.Jurisdiction); c != 0 {
		return c
	}
	if c := cmp.Compare(a.LastName, b.LastName); c != 0 {
		return c
	}
	return cmp.Compare(a.FirstName, b.FirstName)
}

func toSupervisor(r domain.RawSupervisorRecord) domain.Supervisor {
	return domain.Supervisor{
		ID:                   r.ID,
		Name:                 r.DisplayName(),
		Phone:                r.Phone,
		IdentificationNumber: r.IdentificationNumber,
	}
}

// Find returns the first supervisor with id from a snapshot.
func Find(snapshot []domain.Supervisor, id string) (domain.Supervisor, bool) {
	i := slices.IndexFunc(snapshot, func(s domain.Supervisor) bool { return s.ID == id })
	if i < 0 {
		return domain.Supervisor{}, false
	}
	return snapshot[i], true
}
