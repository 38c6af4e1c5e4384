package domain

import "testing"

func TestDeriveUser(t *testing.T) {
	cases := []struct {
		name         string
		profile      Profile
		wantFirst    string
		wantInitials string
		wantDisplay  string
	}{
		{"full name", Profile{ID: "1", FirstName: "ada", LastName: "lovelace"}, "ada", "AL", "ADA LOVELACE"},
		{"no last name", Profile{ID: "2", FirstName: "Grace"}, "Grace", "GU", "GRACE "},
		{"no names", Profile{ID: "3"}, "User", "UU", "USER "},
		{"no first name", Profile{ID: "4", LastName: "Hopper"}, "User", "UH", "USER HOPPER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := DeriveUser(tc.profile)
			if u.FirstName != tc.wantFirst {
				t.Fatalf("first name = %q; want %q", u.FirstName, tc.wantFirst)
			}
			if u.Initials != tc.wantInitials {
				t.Fatalf("initials = %q; want %q", u.Initials, tc.wantInitials)
			}
			if u.DisplayName() != tc.wantDisplay {
				t.Fatalf("display = %q; want %q", u.DisplayName(), tc.wantDisplay)
			}
		})
	}
}

func TestFallbackUserUsesMetadataAndEmail(t *testing.T) {
	u := FallbackUser(AuthUser{
		ID:       "u1",
		Email:    "a@example.com",
		Metadata: map[string]string{MetaFirstName: "Alan", MetaLastName: "Turing"},
	})
	if u.ID != "u1" || u.Email != "a@example.com" {
		t.Fatalf("unexpected identity: %+v", u)
	}
	if u.Initials != "AT" || u.IsAdmin {
		t.Fatalf("unexpected fallback: %+v", u)
	}
}

func TestTaskPatchApply(t *testing.T) {
	title := "new"
	st := StatusDone
	base := Task{ID: "t", Title: "old", Status: StatusUpcoming}

	got := TaskPatch{Status: &st}.Apply(base)
	if got.Title != "old" || got.Status != StatusDone {
		t.Fatalf("status patch changed wrong fields: %+v", got)
	}
	got = TaskPatch{Title: &title}.Apply(base)
	if got.Title != "new" || got.Status != StatusUpcoming {
		t.Fatalf("title patch changed wrong fields: %+v", got)
	}
	if !(TaskPatch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
}
