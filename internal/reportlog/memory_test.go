package reportlog_test

import (
	"context"
	"testing"

	"github.com/modsentry/modsentry/internal/reportlog"
)

var ctx = context.Background()

func TestMemoryLog_appendAssignsIdentity(t *testing.T) {
	l := reportlog.NewMemoryLog()
	e := &reportlog.Entry{Reporter: "alice", Reportee: "brett", Category: "Impersonation"}

	if err := l.Append(ctx, e); err != nil {
		t.Fatal(err)
	}
	if e.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("Append should assign an ID")
	}
	if e.CreatedAt.IsZero() {
		t.Error("Append should assign CreatedAt")
	}
}

func TestMemoryLog_listNewestFirst(t *testing.T) {
	l := reportlog.NewMemoryLog()
	for _, reportee := range []string{"first", "second", "third"} {
		if err := l.Append(ctx, &reportlog.Entry{Reporter: "alice", Reportee: reportee}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := l.List(ctx, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Reportee != "third" || entries[1].Reportee != "second" {
		t.Errorf("got [%s %s], want [third second]", entries[0].Reportee, entries[1].Reportee)
	}

	entries, err = l.List(ctx, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Reportee != "first" {
		t.Errorf("offset list = %v, want [first]", entries)
	}
}
