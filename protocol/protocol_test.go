package protocol

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Code
	}{
		{"ENTRY_OK", EntryOk},
		{"ENTRY_OK\n", EntryOk},
		{"ENTRY_OK\r\n", EntryOk},
		{"  EXIT_OK  ", ExitOk},
		{"UNREGISTERED", Unregistered},
		{"NO_OWNER", NoOwner},
		{"INACTIVE", Inactive},
		{"TIME_ERROR", TimeError},
		{"COMPUTE_ERROR", ComputeError},
		{"GENERAL_ERROR", GeneralError},
		{"CONNECTIVITY_TEST", ConnectivityTest},
		{"TEST\n", ConnectivityTest},
		{"entry_ok", Unrecognized},
		{"ENTRADA_OK", Unrecognized},
		{"", Unrecognized},
		{"garbage", Unrecognized},
	}

	for _, tt := range tests {
		if got := Classify(tt.line); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWithAliases(t *testing.T) {
	tbl, err := DefaultTable().WithAliases(LegacyAliases)
	if err != nil {
		t.Fatalf("WithAliases: %v", err)
	}

	if got := tbl.Classify("ENTRADA_OK"); got != EntryOk {
		t.Errorf("ENTRADA_OK = %v, want %v", got, EntryOk)
	}
	if got := tbl.Classify("ERRO_GERAL\n"); got != GeneralError {
		t.Errorf("ERRO_GERAL = %v, want %v", got, GeneralError)
	}
	if got := tbl.Classify("ENTRY_OK"); got != EntryOk {
		t.Errorf("ENTRY_OK = %v, want %v", got, EntryOk)
	}

	// The default table is not modified.
	if got := Classify("ENTRADA_OK"); got != Unrecognized {
		t.Errorf("default table classified ENTRADA_OK as %v", got)
	}

	if _, err := DefaultTable().WithAliases(map[string]string{"OK": "NOPE"}); err == nil {
		t.Error("alias to unknown token accepted")
	}
}

func TestToken(t *testing.T) {
	for tok, code := range defaultTokens {
		if tok == "TEST" {
			continue
		}
		if got := code.Token(); got != tok {
			t.Errorf("%v.Token() = %q, want %q", code, got, tok)
		}
	}
	if got := TimedOut.Token(); got != "" {
		t.Errorf("TimedOut.Token() = %q, want empty", got)
	}
}
