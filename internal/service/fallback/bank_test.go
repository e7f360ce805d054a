package fallback

import (
	"strings"
	"testing"
)

func TestResponseKnownObject(t *testing.T) {
	bank := New(42)

	for i := 0; i < 20; i++ {
		reply := bank.Response("lamp")
		if !contains(Candidates("lamp"), reply) {
			t.Fatalf("reply %q not in the lamp bank", reply)
		}
	}
}

func TestResponseCaseInsensitive(t *testing.T) {
	bank := New(42)

	reply := bank.Response("LAMP")
	if !contains(Candidates("lamp"), reply) {
		t.Fatalf("reply %q not in the lamp bank", reply)
	}
}

func TestResponseUnknownObjectSubstitutes(t *testing.T) {
	bank := New(42)

	for i := 0; i < 20; i++ {
		reply := bank.Response("toaster")
		if !strings.Contains(reply, "toaster") {
			t.Fatalf("generic reply %q does not mention the object", reply)
		}
		if strings.Contains(reply, "{object}") {
			t.Fatalf("placeholder left in reply %q", reply)
		}
	}
}

func TestCandidatesNeverEmpty(t *testing.T) {
	for _, object := range []string{"lamp", "book", "chair", "anything else"} {
		candidates := Candidates(object)
		if len(candidates) == 0 {
			t.Fatalf("no candidates for %q", object)
		}
		for _, c := range candidates {
			if c == "" {
				t.Fatalf("empty candidate for %q", object)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
