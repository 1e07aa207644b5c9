package review

// MergeRemote folds a freshly fetched remote record into the local
// one and reports whether anything changed. It is a pure function:
// neither input is modified, and the same inputs always produce the
// same output.
//
// Policy:
//   - Comments are merged by id. A remote comment whose id is absent
//     locally is appended; remote never overwrites the fields of a
//     comment that already exists locally.
//   - Local comments whose id is absent from the remote are pruned,
//     but only when the remote comment list is non-empty. An empty
//     remote list is read as "remote not yet written", not
//     "everything was deleted"; otherwise a freshly created sidecar
//     would wipe comments added before the first successful remote
//     write.
//   - Approval is last-remote-wins: any difference is taken from the
//     remote with no timestamp comparison.
func MergeRemote(local, remote *Record) (*Record, bool) {
	merged := local.Clone()
	changed := false

	remoteIDs := make(map[string]struct{}, len(remote.Comments))
	for _, c := range remote.Comments {
		remoteIDs[c.ID] = struct{}{}
	}

	if len(remote.Comments) > 0 {
		kept := merged.Comments[:0]
		for _, c := range merged.Comments {
			if _, ok := remoteIDs[c.ID]; !ok {
				changed = true
				continue
			}
			kept = append(kept, c)
		}
		merged.Comments = kept
	}

	localIDs := make(map[string]struct{}, len(merged.Comments))
	for _, c := range merged.Comments {
		localIDs[c.ID] = struct{}{}
	}
	for _, c := range remote.Comments {
		if _, ok := localIDs[c.ID]; ok {
			continue
		}
		merged.Comments = append(merged.Comments, c)
		localIDs[c.ID] = struct{}{}
		changed = true
	}

	if remote.Approval != "" && remote.Approval != merged.Approval {
		merged.Approval = remote.Approval
		changed = true
	}

	return merged, changed
}
