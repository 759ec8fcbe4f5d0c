package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gymhub/internal/domain/member"
)

func TestExecuteImportMembers(t *testing.T) {
	csvData := strings.Join([]string{
		"name,email,plan,phone,notes",
		"Sam Porter,sam@gym.test,standard,021 555 0101,front desk",
		"Jo Lim,JO@gym.test,,,",
		`"Kerr, Alex",alex@gym.test,premium,,`,
		",nobody@gym.test,basic,,",
		"Existing,taken@gym.test,basic,,",
		"Bad Plan,bp@gym.test,gold,,",
	}, "\n")

	tests := []struct {
		name        string
		dryRun      bool
		wantCreated int
		wantSkipped int
		wantErrRows []int
		wantStored  int
	}{
		{name: "import", wantCreated: 3, wantSkipped: 1, wantErrRows: []int{5, 7}, wantStored: 4},
		{name: "dry run", dryRun: true, wantCreated: 4, wantErrRows: []int{5, 7}, wantStored: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockMemberStore(member.Member{ID: "m0", Email: "taken@gym.test"})
			box := newMockOutbox()
			res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{
				Reader: strings.NewReader(csvData), DryRun: tt.dryRun,
			}, ImportMembersDeps{MemberStore: store, Outbox: box, GenerateID: sequentialIDs(), Now: fixedNow})
			if err != nil {
				t.Fatal(err)
			}

			if res.Total != 6 || res.Created != tt.wantCreated || res.Skipped != tt.wantSkipped {
				t.Errorf("result = %+v", res)
			}
			var rows []int
			for _, e := range res.Errors {
				rows = append(rows, e.Row)
			}
			if len(rows) != len(tt.wantErrRows) || (len(rows) > 0 && (rows[0] != tt.wantErrRows[0] || rows[1] != tt.wantErrRows[1])) {
				t.Errorf("error rows = %v, want %v (%+v)", rows, tt.wantErrRows, res.Errors)
			}
			if len(res.Unknown) != 1 || res.Unknown[0] != "notes" {
				t.Errorf("unknown = %v", res.Unknown)
			}
			if len(store.members) != tt.wantStored {
				t.Errorf("stored = %d, want %d", len(store.members), tt.wantStored)
			}
			if len(box.entries) != 0 {
				t.Error("welcome emails sent without SendWelcome")
			}
		})
	}
}

func TestExecuteImportMembers_DefaultPlanAndPasswords(t *testing.T) {
	store := newMockMemberStore()
	res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{
		Reader: strings.NewReader("NAME,EMAIL\nJo Lim,jo@gym.test\n"), DefaultPlan: member.PlanPremium,
	}, ImportMembersDeps{MemberStore: store, GenerateID: sequentialIDs(), Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if res.Passwords["jo@gym.test"] == "" {
		t.Error("temporary password not reported")
	}
	for _, m := range store.members {
		if m.Plan != member.PlanPremium {
			t.Errorf("plan = %s", m.Plan)
		}
	}
}

func TestExecuteImportMembers_MissingColumn(t *testing.T) {
	_, err := ExecuteImportMembers(context.Background(), ImportMembersInput{Reader: strings.NewReader("name,phone\nJo,1\n")},
		ImportMembersDeps{MemberStore: newMockMemberStore()})
	var ve *ImportMembersValidationError
	if !errors.As(err, &ve) || !strings.Contains(ve.Message, "EMAIL") {
		t.Fatalf("err = %v", err)
	}
}

// brokenReader serves data and then fails every later read, like a reset connection.
type brokenReader struct {
	data  *strings.Reader
	err   error
	calls int
}

func (r *brokenReader) Read(p []byte) (int, error) {
	r.calls++
	if r.data.Len() > 0 {
		return r.data.Read(p)
	}
	return 0, r.err
}

func TestExecuteImportMembers_ReadFailureStopsImport(t *testing.T) {
	resetErr := errors.New("connection reset by peer")
	reader := &brokenReader{data: strings.NewReader("name,email\nJo Lim,jo@gym.test\n"), err: resetErr}

	done := make(chan struct{})
	var res ImportMembersResult
	var err error
	go func() {
		defer close(done)
		res, err = ExecuteImportMembers(context.Background(), ImportMembersInput{Reader: reader, DryRun: true},
			ImportMembersDeps{MemberStore: newMockMemberStore()})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("import kept reading after a persistent read error")
	}

	if !errors.Is(err, resetErr) {
		t.Fatalf("err = %v, want %v", err, resetErr)
	}
	if res.Created != 1 || len(res.Errors) != 0 {
		t.Errorf("result = %+v", res)
	}
	if reader.calls > 10 {
		t.Errorf("reader called %d times after failing", reader.calls)
	}
}

func TestExecuteImportMembers_MalformedRowIsSkipped(t *testing.T) {
	store := newMockMemberStore()
	res, err := ExecuteImportMembers(context.Background(), ImportMembersInput{
		Reader: strings.NewReader("name,email\nJo \"Lim,jo@gym.test\nAna Silva,ana@gym.test\n"),
	}, ImportMembersDeps{MemberStore: store, GenerateID: sequentialIDs(), Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 1 || len(res.Errors) != 1 || res.Errors[0].Row != 2 {
		t.Errorf("result = %+v", res)
	}
}
