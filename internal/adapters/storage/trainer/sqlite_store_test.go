package trainer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountstore "gymhub/internal/adapters/storage/account"
	"gymhub/internal/adapters/storage/storagetest"
	"gymhub/internal/adapters/storage/trainer"
	accountdomain "gymhub/internal/domain/account"
	domain "gymhub/internal/domain/trainer"
)

func newTrainer(id, accountID, email string) (domain.Trainer, accountdomain.Account) {
	hired := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.Trainer{
			ID: id, AccountID: accountID, Name: "Coach " + id, Email: email,
			Specialty: domain.SpecialtyYoga, Certification: "RYT-200",
			ExperienceYears: 4, HourlyRateCents: 5000, Status: domain.StatusActive, HiredOn: hired,
		}, accountdomain.Account{
			ID: accountID, Email: email, Name: "Coach " + id, Role: accountdomain.RoleTrainer,
			PasswordHash: "x", CreatedAt: hired, PasswordChangeRequired: true,
		}
}

func TestSQLiteStore_CreateWithAccount(t *testing.T) {
	db := storagetest.NewDB(t)
	store := trainer.NewSQLiteStore(db)
	accounts := accountstore.NewSQLiteStore(db)
	ctx := context.Background()

	tr, acc := newTrainer("t1", "a1", "coach@gym.test")
	require.NoError(t, store.CreateWithAccount(ctx, tr, acc))

	got, err := store.GetByAccountID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "RYT-200", got.Certification)
	assert.Equal(t, "2026-02-01", got.HiredOn.Format("2006-01-02"))

	a, err := accounts.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, accountdomain.RoleTrainer, a.Role)

	n, err := store.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStore_CreateWithAccount_RollsBack(t *testing.T) {
	db := storagetest.NewDB(t)
	store := trainer.NewSQLiteStore(db)
	accounts := accountstore.NewSQLiteStore(db)
	ctx := context.Background()

	tr, acc := newTrainer("t1", "a1", "coach@gym.test")
	require.NoError(t, store.CreateWithAccount(ctx, tr, acc))

	// Fresh account email but the trainer email collides, so the account insert must be undone.
	tr2, acc2 := newTrainer("t2", "a2", "other@gym.test")
	tr2.Email = "coach@gym.test"
	err := store.CreateWithAccount(ctx, tr2, acc2)
	assert.ErrorIs(t, err, trainer.ErrDuplicateEmail)

	_, err = accounts.GetByID(ctx, "a2")
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)

	// Account email collision.
	tr3, acc3 := newTrainer("t3", "a3", "coach@gym.test")
	tr3.Email = "third@gym.test"
	assert.ErrorIs(t, store.CreateWithAccount(ctx, tr3, acc3), trainer.ErrDuplicateEmail)
	_, err = store.GetByID(ctx, "t3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_ListAndDeactivate(t *testing.T) {
	db := storagetest.NewDB(t)
	store := trainer.NewSQLiteStore(db)
	ctx := context.Background()

	for _, id := range []string{"t2", "t1"} {
		tr, acc := newTrainer(id, "acc-"+id, id+"@gym.test")
		require.NoError(t, store.CreateWithAccount(ctx, tr, acc))
	}

	got, err := store.GetByID(ctx, "t2")
	require.NoError(t, err)
	require.NoError(t, got.Deactivate())
	require.NoError(t, store.Save(ctx, got))

	active, err := store.List(ctx, trainer.ListFilter{Status: domain.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "t1", active[0].ID)

	all, err := store.List(ctx, trainer.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Coach t1", all[0].Name)
}
