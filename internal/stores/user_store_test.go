package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camphub/internal/schemas"
)

func newUserStoreMock(t *testing.T) (*UserStore, pgxmock.PgxPoolIface) {
	t.Helper()

	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(poolMock.Close)

	return NewUserStore(poolMock), poolMock
}

func accountRow(account *schemas.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "email", "role", "password",
		"reset_password_token", "reset_password_expire", "created_at",
	}).AddRow(
		account.ID, account.Name, account.Email, account.Role, account.Password,
		account.ResetPasswordToken, account.ResetPasswordExpire, account.CreatedAt,
	)
}

func testAccount() *schemas.Account {
	return &schemas.Account{
		ID:        uuid.New(),
		Name:      "John Doe",
		Email:     "john@gmail.com",
		Role:      schemas.RoleUser,
		Password:  "$2a$10$hash",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestFindByEmail(t *testing.T) {
	store, poolMock := newUserStoreMock(t)
	account := testAccount()

	poolMock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs(account.Email).
		WillReturnRows(accountRow(account))

	found, err := store.FindByEmail(context.Background(), account.Email)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, account.Password, found.Password)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestFindByEmailNotFound(t *testing.T) {
	store, poolMock := newUserStoreMock(t)

	poolMock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("missing@gmail.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.FindByEmail(context.Background(), "missing@gmail.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestCreateAccount(t *testing.T) {
	store, poolMock := newUserStoreMock(t)
	account := testAccount()

	poolMock.ExpectExec("INSERT INTO users").
		WithArgs(account.ID, account.Name, account.Email, account.Role, account.Password, account.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.Create(context.Background(), account)
	assert.NoError(t, err)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestFindByResetHashChecksExpiry(t *testing.T) {
	store, poolMock := newUserStoreMock(t)
	account := testAccount()
	now := time.Now().UTC()

	poolMock.ExpectQuery("SELECT (.+) FROM users WHERE reset_password_token = (.+) AND reset_password_expire >").
		WithArgs("somehash", now).
		WillReturnRows(accountRow(account))

	found, err := store.FindByResetHash(context.Background(), "somehash", now)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestSetAndClearResetToken(t *testing.T) {
	store, poolMock := newUserStoreMock(t)
	id := uuid.New()
	expire := time.Now().UTC().Add(10 * time.Minute)

	poolMock.ExpectExec("UPDATE users SET reset_password_token").
		WithArgs(id, "somehash", expire).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.SetResetToken(context.Background(), id, "somehash", expire))

	poolMock.ExpectExec("UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.ClearResetToken(context.Background(), id))

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestResetPasswordClearsTokenInOneStatement(t *testing.T) {
	store, poolMock := newUserStoreMock(t)
	id := uuid.New()

	poolMock.ExpectExec("UPDATE users SET password = (.+), reset_password_token = NULL, reset_password_expire = NULL").
		WithArgs(id, "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.ResetPassword(context.Background(), id, "newhash")
	assert.NoError(t, err)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestResetPasswordUnknownID(t *testing.T) {
	store, poolMock := newUserStoreMock(t)
	id := uuid.New()

	poolMock.ExpectExec("UPDATE users SET password").
		WithArgs(id, "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.ResetPassword(context.Background(), id, "newhash")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestDeleteAccount(t *testing.T) {
	store, poolMock := newUserStoreMock(t)
	id := uuid.New()

	poolMock.ExpectExec("DELETE FROM users").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, store.Delete(context.Background(), id))

	poolMock.ExpectExec("DELETE FROM users").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, store.Delete(context.Background(), id), pgx.ErrNoRows)

	assert.NoError(t, poolMock.ExpectationsWereMet())
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, ComparePassword(hash, "secret1"))
	assert.False(t, ComparePassword(hash, "wrongpass"))
}
