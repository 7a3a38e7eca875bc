package audit

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Auditable is implemented by domain entities that participate in change
// capture. AuditSnapshot returns the audited fields only; entities decide
// what is worth tracking rather than reflection walking every column.
type Auditable interface {
	AuditKind() Kind
	AuditEntityID() string
	AuditSnapshot() Snapshot
}

// Snapshot is a point-in-time view of an entity's audited fields, already
// normalized to comparable strings.
type Snapshot map[string]*string

// Capture builds a Snapshot from raw field values. Normalization rules:
// times become UTC RFC3339Nano, nil pointers and nil interfaces stay nil,
// everything else goes through its String method or fmt.
func Capture(fields map[string]any) Snapshot {
	snap := make(Snapshot, len(fields))
	for name, value := range fields {
		snap[name] = normalize(value)
	}
	return snap
}

func normalize(value any) *string {
	if value == nil {
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	case time.Time:
		if v.IsZero() {
			return nil
		}
		s = v.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		s = v.UTC().Format(time.RFC3339Nano)
	case bool:
		s = strconv.FormatBool(v)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprintf("%v", v)
	}
	return &s
}

// Diff returns the fields whose normalized value differs between the two
// snapshots. A nil before treats every after field as newly set, which is
// how updates degrade when the pre-image could not be fetched.
func Diff(before, after Snapshot) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	names := make(map[string]struct{}, len(before)+len(after))
	for name := range before {
		names[name] = struct{}{}
	}
	for name := range after {
		names[name] = struct{}{}
	}
	for name := range names {
		prev := before[name]
		cur := after[name]
		if equal(prev, cur) {
			continue
		}
		changes[name] = FieldChange{Old: prev, New: cur}
	}
	return changes
}

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ChangedFields returns the sorted field names of a change set, for logs.
func ChangedFields(changes map[string]FieldChange) []string {
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
