package account_test

import (
	"errors"
	"testing"

	"github.com/modsentry/modsentry/internal/account"
)

func TestParseSubmission_sixFields(t *testing.T) {
	d, err := account.ParseSubmission("alice; hello there; bob,carol; dave; 8.8.8.8; 2")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "alice" {
		t.Errorf("Name = %q, want %q", d.Name, "alice")
	}
	if d.Intro != "hello there" {
		t.Errorf("Intro = %q, want %q", d.Intro, "hello there")
	}
	if len(d.Followers) != 2 || d.Followers[0] != "bob" || d.Followers[1] != "carol" {
		t.Errorf("Followers = %v, want [bob carol]", d.Followers)
	}
	if len(d.Following) != 1 || d.Following[0] != "dave" {
		t.Errorf("Following = %v, want [dave]", d.Following)
	}
	if d.IPAddress != "8.8.8.8" {
		t.Errorf("IPAddress = %q, want 8.8.8.8", d.IPAddress)
	}
	if d.ReportCount != 2 {
		t.Errorf("ReportCount = %d, want 2", d.ReportCount)
	}
	if d.ReportedReasons != nil {
		t.Errorf("ReportedReasons = %v, want nil", d.ReportedReasons)
	}
	if d.Location != nil {
		t.Errorf("Location should not be set by the parser, got %v", d.Location)
	}
}

func TestParseSubmission_withReasons(t *testing.T) {
	d, err := account.ParseSubmission("alice; hi; bob; carol; 1.2.3.4; 1; Impersonation,Spam")
	if err != nil {
		t.Fatal(err)
	}
	if !d.ReportedFor(account.ReasonImpersonation) {
		t.Error("expected account to be reported for Impersonation")
	}
	if d.ReportedFor("Harassment") {
		t.Error("unexpected Harassment reason")
	}
}

func TestParseSubmission_fieldCountMismatch(t *testing.T) {
	for _, record := range []string{
		"alice; hi; bob; carol; 1.2.3.4",                          // 5 fields
		"alice; hi; bob; carol; 1.2.3.4; 1; Impersonation; extra", // 8 fields
	} {
		_, err := account.ParseSubmission(record)
		var parseErr *account.ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("record %q: expected ParseError, got %v", record, err)
		}
	}
}

func TestParseSubmission_badReportCount(t *testing.T) {
	_, err := account.ParseSubmission("alice; hi; bob; carol; 1.2.3.4; lots")
	var parseErr *account.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseBatch_preservesDocumentOrder(t *testing.T) {
	data := []byte(`{
		"zed":   "zed; hi; a; b; 1.1.1.1; 0",
		"alice": "alice; hi; a; b; 2.2.2.2; 1",
		"mike":  "mike; hi; a; b; 3.3.3.3; 0"
	}`)

	set, err := account.ParseBatch(data)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"zed", "alice", "mike"}
	ids := set.IDs()
	if len(ids) != len(want) {
		t.Fatalf("got %d ids, want %d", len(ids), len(want))
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], id)
		}
	}
}

func TestParseBatch_propagatesRecordError(t *testing.T) {
	_, err := account.ParseBatch([]byte(`{"a": "too; few; fields"}`))
	var parseErr *account.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseBatch_rejectsNonObject(t *testing.T) {
	_, err := account.ParseBatch([]byte(`["a", "b"]`))
	if err == nil {
		t.Fatal("expected error for non-object batch")
	}
}

func TestCriteriaSet_addReplacesKeepingPosition(t *testing.T) {
	set := account.NewCriteriaSet()
	set.Add("a", &account.Descriptor{Name: "first"})
	set.Add("b", &account.Descriptor{Name: "second"})
	set.Add("a", &account.Descriptor{Name: "replaced"})

	ids := set.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v, want [a b]", ids)
	}
	d, _ := set.Get("a")
	if d.Name != "replaced" {
		t.Errorf("Get(a).Name = %q, want replaced", d.Name)
	}
}
