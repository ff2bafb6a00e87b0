package helper

import "testing"

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"chat.zip":            "chat.zip",
		"../../etc/passwd":    "passwd",
		`C:\exports\chat.txt`: "chat.txt",
		"a:b?.txt":            "a_b_.txt",
		"..":                  "",
		"  ":                  "",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range cases {
		if got := HumanBytes(in); got != want {
			t.Errorf("HumanBytes(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestPercent(t *testing.T) {
	if Percent(5, 10) != 50 || Percent(1, 0) != 0 {
		t.Fatal("unexpected percent")
	}
}
