package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sectionmodel "github.com/openmes/batch-record-api/internal/section/model"
	templatemodel "github.com/openmes/batch-record-api/internal/template/model"
)

func strPtr(s string) *string { return &s }

// parent with two children, one nested grandchild under the second child
func familyTree() []templatemodel.Section {
	return []templatemodel.Section{
		{SectionID: "root"},
		{SectionID: "child-1", ParentSectionID: strPtr("root")},
		{SectionID: "child-2", ParentSectionID: strPtr("root")},
		{SectionID: "grandchild", ParentSectionID: strPtr("child-2")},
	}
}

func entriesWith(statuses map[string]string) map[string]Entry {
	entries := make(map[string]Entry)
	for id, status := range statuses {
		entries[id] = Entry{Status: status, Version: 1, VersionID: "ver-" + id}
	}
	return entries
}

func TestDerive_AllChildrenResolved(t *testing.T) {
	entries := entriesWith(map[string]string{
		"root":       sectionmodel.StatusDraft,
		"child-1":    sectionmodel.StatusCompleted,
		"child-2":    sectionmodel.StatusDraft,
		"grandchild": sectionmodel.StatusApproved,
	})

	derived := Derive(familyTree(), entries)

	// grandchild resolves child-2, both children resolve root
	assert.Equal(t, sectionmodel.StatusCompleted, derived["child-2"])
	assert.Equal(t, sectionmodel.StatusCompleted, derived["root"])
	assert.Equal(t, sectionmodel.StatusCompleted, derived["child-1"])
}

func TestDerive_PendingChildPropagatesUp(t *testing.T) {
	entries := entriesWith(map[string]string{
		"root":       sectionmodel.StatusDraft,
		"child-1":    sectionmodel.StatusCompleted,
		"child-2":    sectionmodel.StatusDraft,
		"grandchild": sectionmodel.StatusPendingApproval,
	})

	derived := Derive(familyTree(), entries)

	assert.Equal(t, sectionmodel.StatusPendingApproval, derived["child-2"])
	assert.Equal(t, sectionmodel.StatusPendingApproval, derived["root"])
}

func TestDerive_UnresolvedChildLeavesParentDraft(t *testing.T) {
	entries := entriesWith(map[string]string{
		"root":       sectionmodel.StatusDraft,
		"child-1":    sectionmodel.StatusCompleted,
		"child-2":    sectionmodel.StatusDraft,
		"grandchild": sectionmodel.StatusDraft,
	})

	derived := Derive(familyTree(), entries)

	assert.Equal(t, sectionmodel.StatusDraft, derived["child-2"])
	assert.Equal(t, sectionmodel.StatusDraft, derived["root"])
}

func TestDerive_ManualStatusOutranksChildren(t *testing.T) {
	entries := entriesWith(map[string]string{
		"root":       sectionmodel.StatusApprovedForChange,
		"child-1":    sectionmodel.StatusCompleted,
		"child-2":    sectionmodel.StatusCompleted,
		"grandchild": sectionmodel.StatusCompleted,
	})

	derived := Derive(familyTree(), entries)

	// children would resolve root to COMPLETED, but the manual state wins
	assert.Equal(t, sectionmodel.StatusApprovedForChange, derived["root"])
}

func TestDerive_LeafKeepsStoredStatus(t *testing.T) {
	sections := []templatemodel.Section{{SectionID: "solo"}}
	entries := entriesWith(map[string]string{"solo": sectionmodel.StatusApprovedForChange})

	derived := Derive(sections, entries)

	assert.Equal(t, sectionmodel.StatusApprovedForChange, derived["solo"])
}

func TestDerive_MissingEntryDefaultsToDraft(t *testing.T) {
	sections := []templatemodel.Section{
		{SectionID: "root"},
		{SectionID: "child-1", ParentSectionID: strPtr("root")},
	}

	derived := Derive(sections, map[string]Entry{})

	assert.Equal(t, sectionmodel.StatusDraft, derived["child-1"])
	assert.Equal(t, sectionmodel.StatusDraft, derived["root"])
}

func TestChanges_EmitsOnlyMovedSections(t *testing.T) {
	entries := entriesWith(map[string]string{
		"root":       sectionmodel.StatusDraft,
		"child-1":    sectionmodel.StatusCompleted,
		"child-2":    sectionmodel.StatusDraft,
		"grandchild": sectionmodel.StatusApproved,
	})

	derived := Derive(familyTree(), entries)
	changes := Changes(familyTree(), entries, derived)

	require.Len(t, changes, 2)
	byID := make(map[string]Change)
	for _, c := range changes {
		byID[c.SectionID] = c
	}

	require.Contains(t, byID, "root")
	require.Contains(t, byID, "child-2")
	assert.Equal(t, sectionmodel.StatusCompleted, byID["root"].Status)
	assert.Equal(t, "ver-root", byID["root"].VersionID)
	assert.True(t, byID["root"].SetLock)
	assert.False(t, byID["root"].ClearLock)
}

func TestChanges_ClearsLockWhenLeavingCompleted(t *testing.T) {
	lockedAt := int64(1700000000000)
	entries := map[string]Entry{
		"root":    {Status: sectionmodel.StatusCompleted, Version: 1, VersionID: "ver-root", LockedAt: &lockedAt},
		"child-1": {Status: sectionmodel.StatusCompleted, Version: 1, VersionID: "ver-child-1"},
		"child-2": {Status: sectionmodel.StatusDraft, Version: 2, VersionID: "ver-child-2"},
	}
	sections := []templatemodel.Section{
		{SectionID: "root"},
		{SectionID: "child-1", ParentSectionID: strPtr("root")},
		{SectionID: "child-2", ParentSectionID: strPtr("root")},
	}

	derived := Derive(sections, entries)
	require.Equal(t, sectionmodel.StatusDraft, derived["root"])

	changes := Changes(sections, entries, derived)
	require.Len(t, changes, 1)
	assert.Equal(t, "root", changes[0].SectionID)
	assert.Equal(t, sectionmodel.StatusDraft, changes[0].Status)
	assert.True(t, changes[0].ClearLock)
	assert.False(t, changes[0].SetLock)
}

func TestEntries_BuildsFromActiveVersions(t *testing.T) {
	versions := []sectionmodel.SectionVersion{
		{SectionID: "sec-a", VersionID: "ver-1", Version: 3, Status: sectionmodel.StatusCompleted},
	}

	entries := Entries(versions)

	require.Contains(t, entries, "sec-a")
	assert.Equal(t, 3, entries["sec-a"].Version)
	assert.Equal(t, sectionmodel.StatusCompleted, entries["sec-a"].Status)
}
