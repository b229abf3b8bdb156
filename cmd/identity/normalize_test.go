package identity

import "testing"

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "Alice", want: "alice"},
		{in: "  Alice ", want: "alice"},
		{in: "BOB123", want: "bob123"},
		{in: "   ", want: ""},
		{in: "", want: ""},
		{in: "already-normal", want: "already-normal"},
	}

	for _, tc := range cases {
		if got := NormalizeUsername(tc.in); got != tc.want {
			t.Fatalf("NormalizeUsername(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUsername_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"Alice", " MiXeD ", "plain"} {
		once := NormalizeUsername(in)
		if twice := NormalizeUsername(once); twice != once {
			t.Fatalf("normalization not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
