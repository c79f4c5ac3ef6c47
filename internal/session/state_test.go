package session

import (
	"testing"

	"ifrs-console/internal/model"
)

func TestStateShouldStartLoading(t *testing.T) {
	st := newState("s")
	if !st.Loading() {
		t.Fatal("new state should be loading")
	}
	if st.Authenticated() {
		t.Fatal("new state should not be authenticated")
	}
}

func TestSettleShouldHappenOnce(t *testing.T) {
	st := newState("s")
	u := &model.User{ID: "u1"}

	if !st.settle("tok", u) {
		t.Fatal("first settle should win")
	}
	if st.settle("", nil) {
		t.Fatal("second settle should be a no-op")
	}
	if st.Loading() {
		t.Fatal("loading should stay false")
	}
	if st.User() == nil || st.User().ID != "u1" {
		t.Fatalf("user = %+v, want u1", st.User())
	}
}

func TestClearShouldDropTokenAndUserTogether(t *testing.T) {
	st := NewSettled("s", "tok", &model.User{ID: "u1"})
	st.clear()
	if st.Token() != "" || st.User() != nil {
		t.Fatalf("token=%q user=%v, want both empty", st.Token(), st.User())
	}
	if st.Loading() {
		t.Fatal("clear must not reopen loading")
	}
}
