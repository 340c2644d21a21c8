package models

import (
	"testing"
	"time"
)

func TestStringSetUnion(t *testing.T) {
	set := StringSet{"chat"}

	got := set.Union(ContactMethodPhone, ContactMethodMessage)
	want := StringSet{"chat", "message", "phone"}
	if len(got) != len(want) {
		t.Fatalf("Union = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Union = %v, want %v", got, want)
		}
	}

	// repeating the union must not grow the set
	again := got.Union(ContactMethodPhone, ContactMethodMessage, ContactMethodChat)
	if len(again) != len(got) {
		t.Errorf("repeated Union grew the set: %v", again)
	}
}

func TestStringSetUnion_NormalizesInput(t *testing.T) {
	got := StringSet{}.Union("  Phone ", "CHAT", "", "chat")
	if len(got) != 2 || !got.Contains("phone") || !got.Contains("chat") {
		t.Errorf("Union did not normalize input: %v", got)
	}
}

func TestStringSetValueScanRoundTrip(t *testing.T) {
	original := StringSet{"chat", "phone"}
	v, err := original.Value()
	if err != nil {
		t.Fatal(err)
	}

	var scanned StringSet
	if err := scanned.Scan(v); err != nil {
		t.Fatal(err)
	}
	if !scanned.Contains("chat") || !scanned.Contains("phone") || len(scanned) != 2 {
		t.Errorf("round trip lost data: %v", scanned)
	}
}

func TestStringSetScan_Nil(t *testing.T) {
	var s StringSet
	if err := s.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if len(s) != 0 {
		t.Errorf("nil scan should produce empty set, got %v", s)
	}
}

func TestListingStatusEquals(t *testing.T) {
	l := &Listing{Status: " Active "}
	if !l.StatusEquals(ListingStatusActive) {
		t.Error("status comparison must ignore case and surrounding space")
	}
	if l.IsDeleted() {
		t.Error("active listing reported deleted")
	}
}

func TestListingIsExpiredAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name    string
		listing Listing
		want    bool
	}{
		{"nil expiry never expires", Listing{Status: ListingStatusActive}, false},
		{"future expiry", Listing{Status: ListingStatusActive, ExpiresAt: &future}, false},
		{"expiry exactly now flips to expired", Listing{Status: ListingStatusActive, ExpiresAt: &now}, true},
		{"past expiry", Listing{Status: ListingStatusActive, ExpiresAt: &past}, true},
		{"literal expired status", Listing{Status: "EXPIRED"}, true},
		{"literal expired without timestamp", Listing{Status: ListingStatusExpired}, true},
	}
	for _, tt := range tests {
		if got := tt.listing.IsExpiredAt(now); got != tt.want {
			t.Errorf("%s: IsExpiredAt = %v, want %v", tt.name, got, tt.want)
		}
	}
}
