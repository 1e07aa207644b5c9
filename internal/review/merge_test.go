package review

import "testing"

func record(fileID string, approval Approval, ids ...string) *Record {
	rec := NewRecord(fileID)
	rec.Approval = approval
	for _, id := range ids {
		rec.AddComment(Comment{ID: id, Text: "from-" + fileID})
	}
	return rec
}

func commentIDs(rec *Record) []string {
	ids := make([]string, len(rec.Comments))
	for i, c := range rec.Comments {
		ids[i] = c.ID
	}
	return ids
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestMergeUnionAddsRemoteComments(t *testing.T) {
	local := record("f", ApprovalPending, "c1")
	remote := record("f", ApprovalPending, "c1", "c2")

	merged, changed := MergeRemote(local, remote)
	if !changed {
		t.Error("expected merge to report a change")
	}
	if !sameIDs(commentIDs(merged), []string{"c1", "c2"}) {
		t.Errorf("expected [c1 c2], got %v", commentIDs(merged))
	}
}

func TestMergeNeverOverwritesLocalFields(t *testing.T) {
	local := record("f", ApprovalPending)
	local.AddComment(Comment{ID: "c1", Timestamp: 12.5, Text: "local text", Author: "alice"})
	remote := record("f", ApprovalPending)
	remote.AddComment(Comment{ID: "c1", Timestamp: 99, Text: "remote text", Author: "bob"})
	remote.AddComment(Comment{ID: "c2", Text: "new"})

	merged, _ := MergeRemote(local, remote)

	c1, ok := merged.FindComment("c1")
	if !ok {
		t.Fatal("c1 missing after merge")
	}
	if c1.Text != "local text" || c1.Timestamp != 12.5 || c1.Author != "alice" {
		t.Errorf("remote copy overwrote local c1: %+v", c1)
	}
	if _, ok := merged.FindComment("c2"); !ok {
		t.Error("c2 missing after merge")
	}
}

func TestMergePrunesAgainstNonEmptyRemote(t *testing.T) {
	local := record("f", ApprovalPending, "c1", "c2")
	remote := record("f", ApprovalPending, "c1")

	merged, changed := MergeRemote(local, remote)
	if !changed {
		t.Error("expected prune to report a change")
	}
	if !sameIDs(commentIDs(merged), []string{"c1"}) {
		t.Errorf("expected [c1], got %v", commentIDs(merged))
	}
}

func TestMergeEmptyRemoteKeepsLocal(t *testing.T) {
	local := record("f", ApprovalPending, "a", "b")
	remote := record("f", ApprovalPending)

	merged, changed := MergeRemote(local, remote)
	if changed {
		t.Error("empty remote must not change local state")
	}
	if !sameIDs(commentIDs(merged), []string{"a", "b"}) {
		t.Errorf("expected local comments untouched, got %v", commentIDs(merged))
	}
}

func TestMergeApprovalRemoteWins(t *testing.T) {
	local := record("f", ApprovalApproved, "c1")
	remote := record("f", ApprovalRevisions, "c1")

	merged, changed := MergeRemote(local, remote)
	if !changed {
		t.Error("expected approval change to be reported")
	}
	if merged.Approval != ApprovalRevisions {
		t.Errorf("expected remote approval to win, got %q", merged.Approval)
	}
}

func TestMergeApprovalWinsEvenWithEmptyRemoteComments(t *testing.T) {
	local := record("f", ApprovalPending, "c1")
	remote := record("f", ApprovalApproved)

	merged, changed := MergeRemote(local, remote)
	if !changed {
		t.Error("expected approval change to be reported")
	}
	if merged.Approval != ApprovalApproved {
		t.Errorf("expected remote approval, got %q", merged.Approval)
	}
	if len(merged.Comments) != 1 {
		t.Error("empty remote comments must not prune local comments")
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	local := record("f", ApprovalPending, "c1", "c3")
	remote := record("f", ApprovalApproved, "c1", "c2")

	once, _ := MergeRemote(local, remote)
	twice, changedAgain := MergeRemote(once, remote)

	if changedAgain {
		t.Error("second merge with same remote reported a change")
	}
	if !sameIDs(commentIDs(twice), commentIDs(once)) {
		t.Errorf("second merge diverged: %v != %v", commentIDs(twice), commentIDs(once))
	}
	if twice.Approval != once.Approval {
		t.Error("second merge changed approval")
	}
}

func TestMergeNoChangeReportsFalse(t *testing.T) {
	local := record("f", ApprovalPending, "c1", "c2")
	remote := record("f", ApprovalPending, "c1", "c2")

	_, changed := MergeRemote(local, remote)
	if changed {
		t.Error("identical records must not report a change")
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	local := record("f", ApprovalPending, "c1", "c2")
	remote := record("f", ApprovalApproved, "c1")

	MergeRemote(local, remote)

	if !sameIDs(commentIDs(local), []string{"c1", "c2"}) {
		t.Errorf("local input was mutated: %v", commentIDs(local))
	}
	if local.Approval != ApprovalPending {
		t.Error("local approval was mutated")
	}
	if !sameIDs(commentIDs(remote), []string{"c1"}) {
		t.Errorf("remote input was mutated: %v", commentIDs(remote))
	}
}
