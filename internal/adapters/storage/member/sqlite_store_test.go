package member_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymhub/internal/adapters/storage/member"
	"gymhub/internal/adapters/storage/storagetest"
	accountdomain "gymhub/internal/domain/account"
	domain "gymhub/internal/domain/member"
)

var joined = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

func seedMembers(t *testing.T, store *member.SQLiteStore) {
	t.Helper()
	rows := []domain.Member{
		{ID: "m1", Name: "Alice Archer", Email: "alice@gym.test", Plan: domain.PlanBasic, Status: domain.StatusActive, ExpiresOn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "m2", Name: "Bob Baker", Email: "bob@gym.test", Plan: domain.PlanPremium, Status: domain.StatusActive, ExpiresOn: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "m3", Name: "Cara Cole", Email: "cara@gym.test", Plan: domain.PlanBasic, Status: domain.StatusPending},
		{ID: "m4", Name: "Dan Drake", Email: "dan@gym.test", Plan: domain.PlanStandard, Status: domain.StatusSuspended, ExpiresOn: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, m := range rows {
		m.JoinedAt = joined
		require.NoError(t, store.Save(context.Background(), m))
	}
}

func TestSQLiteStore_SaveGetRoundTrip(t *testing.T) {
	db := storagetest.NewDB(t)
	store := member.NewSQLiteStore(db)
	ctx := context.Background()
	seedMembers(t, store)

	got, err := store.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Archer", got.Name)
	assert.Equal(t, "2026-03-01", got.ExpiresOn.Format(domain.DateLayout))
	assert.True(t, got.JoinedAt.Equal(joined))
	assert.Empty(t, got.AccountID)

	pending, err := store.GetByID(ctx, "m3")
	require.NoError(t, err)
	assert.True(t, pending.ExpiresOn.IsZero())

	_, err = store.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dup := domain.Member{ID: "m9", Name: "Dup", Email: "ALICE@gym.test", Plan: domain.PlanBasic, Status: domain.StatusPending, JoinedAt: joined}
	assert.ErrorIs(t, store.Save(ctx, dup), member.ErrDuplicateEmail)
}

func TestSQLiteStore_ListFilterSortCount(t *testing.T) {
	db := storagetest.NewDB(t)
	store := member.NewSQLiteStore(db)
	ctx := context.Background()
	seedMembers(t, store)

	tests := []struct {
		name   string
		filter member.ListFilter
		want   []string
	}{
		{name: "all by name", filter: member.ListFilter{}, want: []string{"m1", "m2", "m3", "m4"}},
		{name: "status filter", filter: member.ListFilter{Status: domain.StatusActive}, want: []string{"m1", "m2"}},
		{name: "plan filter", filter: member.ListFilter{Plan: domain.PlanBasic}, want: []string{"m1", "m3"}},
		{name: "search email", filter: member.ListFilter{Search: "bob@"}, want: []string{"m2"}},
		{name: "sort desc", filter: member.ListFilter{Sort: "name", Dir: "desc"}, want: []string{"m4", "m3", "m2", "m1"}},
		{name: "unknown sort falls back to name", filter: member.ListFilter{Sort: "password; DROP"}, want: []string{"m1", "m2", "m3", "m4"}},
		{name: "paging", filter: member.ListFilter{Limit: 2, Offset: 2}, want: []string{"m3", "m4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	n, err := store.Count(ctx, member.ListFilter{Status: domain.StatusActive, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"active": 2, "pending": 1, "suspended": 1}, counts)
}

func TestSQLiteStore_ListLapsed(t *testing.T) {
	db := storagetest.NewDB(t)
	store := member.NewSQLiteStore(db)
	seedMembers(t, store)

	lapsed, err := store.ListLapsed(context.Background(), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, lapsed, 1, fmt.Sprintf("%+v", lapsed))
	assert.Equal(t, "m1", lapsed[0].ID)
}

func TestSQLiteStore_GetByAccountID(t *testing.T) {
	db := storagetest.NewDB(t)
	storagetest.Exec(t, db,
		`INSERT INTO account (id, email, role, created_at) VALUES ('acc1', 'eve@gym.test', 'member', '2026-01-01T00:00:00Z')`)
	store := member.NewSQLiteStore(db)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Member{
		ID: "m5", AccountID: "acc1", Name: "Eve", Email: "eve@gym.test",
		Plan: domain.PlanStandard, Status: domain.StatusPending, JoinedAt: joined,
	}))

	got, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, "m5", got.ID)
}

func TestSQLiteStore_CreateWithAccount(t *testing.T) {
	db := storagetest.NewDB(t)
	store := member.NewSQLiteStore(db)
	ctx := context.Background()

	acct := accountdomain.Account{ID: "acc1", Email: "fay@gym.test", Role: accountdomain.RoleMember, CreatedAt: joined}
	m := domain.Member{
		ID: "m1", AccountID: "acc1", Name: "Fay", Email: "fay@gym.test",
		Plan: domain.PlanBasic, Status: domain.StatusPending, JoinedAt: joined,
	}
	require.NoError(t, store.CreateWithAccount(ctx, m, acct))

	got, err := store.GetByAccountID(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID)

	// Second member reusing the email: the account insert fails and nothing is written.
	acct2 := accountdomain.Account{ID: "acc2", Email: "FAY@gym.test", Role: accountdomain.RoleMember, CreatedAt: joined}
	m2 := m
	m2.ID, m2.AccountID = "m2", "acc2"
	assert.ErrorIs(t, store.CreateWithAccount(ctx, m2, acct2), member.ErrDuplicateEmail)

	// Account email free but member email taken: the account insert is rolled back.
	acct3 := accountdomain.Account{ID: "acc3", Email: "other@gym.test", Role: accountdomain.RoleMember, CreatedAt: joined}
	m3 := m
	m3.ID, m3.AccountID = "m3", "acc3"
	assert.ErrorIs(t, store.CreateWithAccount(ctx, m3, acct3), member.ErrDuplicateEmail)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM account`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_ExpireIfLapsed(t *testing.T) {
	db := storagetest.NewDB(t)
	store := member.NewSQLiteStore(db)
	ctx := context.Background()
	seedMembers(t, store)
	today := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	lapsed, err := store.ListLapsed(ctx, today)
	require.NoError(t, err)
	require.Len(t, lapsed, 1)

	// m1 renews after the sweep listed it but before the sweep writes.
	_, err = store.Update(ctx, "m1", func(m *domain.Member) error {
		return m.ExtendMembership(1, today)
	})
	require.NoError(t, err)

	ok, err := store.ExpireIfLapsed(ctx, lapsed[0].ID, today)
	require.NoError(t, err)
	assert.False(t, ok)
	got, err := store.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, "2026-05-01", got.ExpiresOn.Format(domain.DateLayout))

	// A still-lapsed member expires; suspended and pending rows are left alone.
	ok, err = store.ExpireIfLapsed(ctx, "m1", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)
	for _, id := range []string{"m3", "m4"} {
		ok, err = store.ExpireIfLapsed(ctx, id, today)
		require.NoError(t, err)
		assert.False(t, ok, id)
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	db := storagetest.NewDB(t)
	store := member.NewSQLiteStore(db)
	ctx := context.Background()
	seedMembers(t, store)

	got, err := store.Update(ctx, "m2", func(m *domain.Member) error { return m.Suspend() })
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, got.Status)
	assert.Equal(t, "2026-05-01", got.ExpiresOn.Format(domain.DateLayout))

	// A failing change writes nothing.
	_, err = store.Update(ctx, "m2", func(m *domain.Member) error {
		m.Name = "Changed"
		return m.Suspend()
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySuspended)
	stored, err := store.GetByID(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, "Bob Baker", stored.Name)

	// The result must still validate.
	_, err = store.Update(ctx, "m2", func(m *domain.Member) error {
		m.Email = "not-an-email"
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = store.Update(ctx, "ghost", func(*domain.Member) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_SearchMatchesWildcardsLiterally(t *testing.T) {
	db := storagetest.NewDB(t)
	store := member.NewSQLiteStore(db)
	ctx := context.Background()
	seedMembers(t, store)
	require.NoError(t, store.Save(ctx, domain.Member{
		ID: "m5", Name: "Eli_Ng", Email: "eli@gym.test", Plan: domain.PlanBasic, Status: domain.StatusPending, JoinedAt: joined,
	}))

	tests := []struct {
		search string
		want   int
	}{
		{search: "%", want: 0},
		{search: "_", want: 1},
		{search: `\`, want: 0},
		{search: "a%r", want: 0},
		{search: "Archer", want: 1},
	}
	for _, tt := range tests {
		n, err := store.Count(ctx, member.ListFilter{Search: tt.search})
		require.NoError(t, err)
		assert.Equal(t, tt.want, n, "search %q", tt.search)
	}
}
