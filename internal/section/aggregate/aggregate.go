// Package aggregate derives parent section statuses from their children.
// It is pure: callers feed it the template's section tree and the current
// per-section state, and persist whatever changed.
package aggregate

import (
	sectionmodel "github.com/openmes/batch-record-api/internal/section/model"
	templatemodel "github.com/openmes/batch-record-api/internal/template/model"
)

// Entry is one section's stored state entering the derivation.
type Entry struct {
	Status    string
	Version   int
	VersionID string
	LockedAt  *int64
	LockedBy  *string
}

// Change is a persisted consequence of derivation: the section's active row
// must move to Status. SetLock stamps lock metadata on entering COMPLETED;
// ClearLock removes it when the derived status leaves COMPLETED.
type Change struct {
	SectionID string
	VersionID string
	Status    string
	SetLock   bool
	ClearLock bool
}

// Derive computes the effective status of every section. Sections without
// children keep their stored status. For a parent, a manual status on its
// own row wins; otherwise any pending child makes it PENDING_APPROVAL, a
// non-empty set of fully resolved children makes it COMPLETED, and anything
// else leaves it DRAFT.
func Derive(sections []templatemodel.Section, entries map[string]Entry) map[string]string {
	children := childIndex(sections)
	result := make(map[string]string, len(sections))

	// Iterative post-order: children are final before their parent.
	type frame struct {
		sectionID string
		expanded  bool
	}
	var stack []frame
	for _, s := range sections {
		if s.ParentSectionID == nil {
			stack = append(stack, frame{sectionID: s.SectionID})
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !top.expanded {
			stack = append(stack, frame{sectionID: top.sectionID, expanded: true})
			for _, child := range children[top.sectionID] {
				stack = append(stack, frame{sectionID: child})
			}
			continue
		}

		result[top.sectionID] = deriveOne(top.sectionID, children[top.sectionID], entries, result)
	}

	// Sections detached from the walk (orphaned parents) keep stored status.
	for _, s := range sections {
		if _, ok := result[s.SectionID]; !ok {
			result[s.SectionID] = storedStatus(s.SectionID, entries)
		}
	}

	return result
}

// Changes lists the sections whose persisted status must move to match the
// derivation.
func Changes(sections []templatemodel.Section, entries map[string]Entry, derived map[string]string) []Change {
	var changes []Change
	for _, s := range sections {
		entry, ok := entries[s.SectionID]
		if !ok {
			continue
		}
		target := derived[s.SectionID]
		if target == "" || target == entry.Status {
			continue
		}
		changes = append(changes, Change{
			SectionID: s.SectionID,
			VersionID: entry.VersionID,
			Status:    target,
			SetLock:   target == sectionmodel.StatusCompleted,
			ClearLock: target != sectionmodel.StatusCompleted,
		})
	}
	return changes
}

// Entries builds the derivation input from active section versions.
func Entries(versions []sectionmodel.SectionVersion) map[string]Entry {
	entries := make(map[string]Entry, len(versions))
	for _, v := range versions {
		entries[v.SectionID] = Entry{
			Status:    v.Status,
			Version:   v.Version,
			VersionID: v.VersionID,
			LockedAt:  v.LockedAt,
			LockedBy:  v.LockedBy,
		}
	}
	return entries
}

func deriveOne(sectionID string, childIDs []string, entries map[string]Entry, derived map[string]string) string {
	own := storedStatus(sectionID, entries)

	if len(childIDs) == 0 {
		return own
	}
	if sectionmodel.IsManual(own) {
		return own
	}

	resolved := 0
	for _, childID := range childIDs {
		childStatus := derived[childID]
		if childStatus == sectionmodel.StatusPendingApproval {
			return sectionmodel.StatusPendingApproval
		}
		if sectionmodel.IsResolved(childStatus) {
			resolved++
		}
	}
	if resolved == len(childIDs) {
		return sectionmodel.StatusCompleted
	}
	return sectionmodel.StatusDraft
}

func storedStatus(sectionID string, entries map[string]Entry) string {
	if entry, ok := entries[sectionID]; ok && entry.Status != "" {
		return entry.Status
	}
	return sectionmodel.StatusDraft
}

func childIndex(sections []templatemodel.Section) map[string][]string {
	children := make(map[string][]string)
	for _, s := range sections {
		if s.ParentSectionID != nil && *s.ParentSectionID != s.SectionID {
			children[*s.ParentSectionID] = append(children[*s.ParentSectionID], s.SectionID)
		}
	}
	return children
}
