package permission

import "testing"

func TestCanWrite(t *testing.T) {
	owner := uint64(1)
	cases := []struct {
		name  string
		actor Actor
		res   Resource
		want  bool
	}{
		{"owner", Actor{ID: 1}, Resource{AuthorID: 2, OwnerID: &owner}, true},
		{"author", Actor{ID: 2}, Resource{AuthorID: 2, OwnerID: &owner}, true},
		{"staff", Actor{ID: 3, IsStaff: true}, Resource{AuthorID: 2, OwnerID: &owner}, true},
		{"stranger", Actor{ID: 3}, Resource{AuthorID: 2, OwnerID: &owner}, false},
		{"stranger, no owner", Actor{ID: 3}, Resource{AuthorID: 2}, false},
		{"author, no owner", Actor{ID: 2}, Resource{AuthorID: 2}, true},
	}
	for _, tc := range cases {
		if got := CanWrite(tc.actor, tc.res); got != tc.want {
			t.Errorf("%s: CanWrite = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsOwnerNilOwner(t *testing.T) {
	if IsOwner(Actor{ID: 1}, Resource{AuthorID: 1}) {
		t.Fatal("nil owner must never match")
	}
}

func TestIsAdminOrReadOnly(t *testing.T) {
	staff := Actor{ID: 1, IsStaff: true}
	plain := Actor{ID: 2}

	if !IsAdminOrReadOnly(plain, false) {
		t.Fatal("reads are open to everyone")
	}
	if !IsAdminOrReadOnly(staff, true) {
		t.Fatal("staff may write")
	}
	if IsAdminOrReadOnly(plain, true) {
		t.Fatal("non-staff may not write without an ownership relation")
	}
}
