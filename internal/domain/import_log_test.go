package domain

import "testing"

func TestFinalStatus(t *testing.T) {
	cases := []struct {
		name    string
		success int
		failed  int
		want    LogStatus
	}{
		{"all success", 10, 0, LogStatusSuccess},
		{"all failed", 0, 7, LogStatusFailed},
		{"mixed", 5, 2, LogStatusPartial},
		{"empty file", 0, 0, LogStatusFailed},
		{"single success", 1, 0, LogStatusSuccess},
	}
	for _, tc := range cases {
		if got := FinalStatus(tc.success, tc.failed); got != tc.want {
			t.Fatalf("%s: FinalStatus(%d, %d) = %s, want %s",
				tc.name, tc.success, tc.failed, got, tc.want)
		}
	}
}
