// Package roster reconciles locally enrolled students with the registrar
// roster exported by the student information system.
package roster

import "strings"

// Entry is one row of the registrar roster, keyed by roll number.
type Entry struct {
	RollNo string
	Name   string
	Email  string
}

// Record is the locally enrolled counterpart of an Entry.
type Record struct {
	ID     string
	RollNo string
	Name   string
	Email  string
}

// Update pairs a local record with the registrar values it should take over.
type Update struct {
	ID     string
	RollNo string
	Name   string
	Email  string
}

// Plan describes how to bring local records in line with the registrar
// roster. Missing lists local records absent from the roster; they are
// reported, never deleted automatically.
type Plan struct {
	Creates    []Entry
	Updates    []Update
	Unchanged  int
	Missing    []Record
	Duplicates []string
}

// rosterKey canonicalizes a roll number for lookups.
func rosterKey(rollNo string) string {
	return strings.ToUpper(strings.TrimSpace(rollNo))
}

// BuildPlan compares local records against the registrar roster. The
// registrar wins on real name and email changes; differences that
// NormalizeName erases (case, diacritics, dashes) do not count as changes.
// Roster rows without a roll number are ignored, and only the first row
// per roll number is honored.
func BuildPlan(local []Record, remote []Entry) Plan {
	var plan Plan

	byRoll := make(map[string]Record, len(local))
	for _, r := range local {
		byRoll[rosterKey(r.RollNo)] = r
	}

	seen := make(map[string]bool, len(remote))
	matched := make(map[string]bool, len(local))

	for _, entry := range remote {
		key := rosterKey(entry.RollNo)
		if key == "" {
			continue
		}
		if seen[key] {
			plan.Duplicates = append(plan.Duplicates, entry.RollNo)
			continue
		}
		seen[key] = true

		record, ok := byRoll[key]
		if !ok {
			plan.Creates = append(plan.Creates, entry)
			continue
		}
		matched[key] = true

		// An empty registrar email never clobbers a locally known one.
		email := strings.TrimSpace(entry.Email)
		if email == "" {
			email = record.Email
		}

		if nameChanged(record.Name, entry.Name) || emailChanged(record.Email, email) {
			plan.Updates = append(plan.Updates, Update{
				ID:     record.ID,
				RollNo: record.RollNo,
				Name:   entry.Name,
				Email:  email,
			})
		} else {
			plan.Unchanged++
		}
	}

	for _, r := range local {
		if !matched[rosterKey(r.RollNo)] {
			plan.Missing = append(plan.Missing, r)
		}
	}

	return plan
}

func nameChanged(local, remote string) bool {
	return NormalizeName(local) != NormalizeName(remote)
}

func emailChanged(local, remote string) bool {
	return !strings.EqualFold(strings.TrimSpace(local), strings.TrimSpace(remote))
}
