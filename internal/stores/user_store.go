package stores

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"camphub/internal/interfaces"
	"camphub/internal/schemas"
)

const accountColumns = "id, name, email, role, password, reset_password_token, reset_password_expire, created_at"

// UserStore is the credential store adapter: the only gateway between the
// auth flows and the accounts table.
type UserStore struct {
	db interfaces.Querier
}

// NewUserStore creates a UserStore on the given pool or transaction.
func NewUserStore(db interfaces.Querier) *UserStore {
	return &UserStore{db: db}
}

// WithTx returns a copy of the store that runs inside the transaction.
func (s *UserStore) WithTx(tx pgx.Tx) *UserStore {
	return &UserStore{db: tx}
}

// FindByEmail returns the account with the given email, including the
// password hash, or pgx.ErrNoRows.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*schemas.Account, error) {
	row := s.db.QueryRow(ctx, "SELECT "+accountColumns+" FROM users WHERE email = $1", email)
	return scanAccount(row)
}

// FindByID returns the account with the given id, or pgx.ErrNoRows.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*schemas.Account, error) {
	row := s.db.QueryRow(ctx, "SELECT "+accountColumns+" FROM users WHERE id = $1", id)
	return scanAccount(row)
}

// FindByResetHash returns the account whose persisted reset-token hash
// matches and whose reset window has not yet closed. An expired token and
// an unknown token are indistinguishable: both are pgx.ErrNoRows.
func (s *UserStore) FindByResetHash(ctx context.Context, hash string, now time.Time) (*schemas.Account, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM users WHERE reset_password_token = $1 AND reset_password_expire > $2",
		hash, now)
	return scanAccount(row)
}

// Create persists a new account. The password must already be hashed.
// A duplicate email surfaces as a unique-violation error.
func (s *UserStore) Create(ctx context.Context, account *schemas.Account) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO users (id, name, email, role, password, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		account.ID, account.Name, account.Email, account.Role, account.Password, account.CreatedAt)
	return err
}

// UpdateDetails updates the whitelisted profile fields, skipping blanks,
// and returns the updated account.
func (s *UserStore) UpdateDetails(ctx context.Context, id uuid.UUID, name, email string) (*schemas.Account, error) {
	row := s.db.QueryRow(ctx,
		"UPDATE users SET name = COALESCE(NULLIF($2, ''), name), email = COALESCE(NULLIF($3, ''), email) WHERE id = $1 RETURNING "+accountColumns,
		id, name, email)
	return scanAccount(row)
}

// UpdateRole sets the account role. Admin-only callers.
func (s *UserStore) UpdateRole(ctx context.Context, id uuid.UUID, role schemas.Role) error {
	tag, err := s.db.Exec(ctx, "UPDATE users SET role = $2 WHERE id = $1", id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.db.Exec(ctx, "UPDATE users SET password = $2 WHERE id = $1", id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetResetToken persists the reset-token hash and its expiry instant.
// Only the digest is stored, never the plaintext secret.
func (s *UserStore) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expire time.Time) error {
	_, err := s.db.Exec(ctx,
		"UPDATE users SET reset_password_token = $2, reset_password_expire = $3 WHERE id = $1",
		id, hash, expire)
	return err
}

// ClearResetToken removes the reset fields, either as the compensating
// action after a failed delivery or after a completed reset.
func (s *UserStore) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1", id)
	return err
}

// ResetPassword consumes a reset token: the new hash is stored and the
// reset fields cleared in a single statement, so a token can never survive
// the password change it authorized.
func (s *UserStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE users SET password = $2, reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1",
		id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an account, reporting pgx.ErrNoRows for unknown ids.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (*schemas.Account, error) {
	account := &schemas.Account{}
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Role,
		&account.Password,
		&account.ResetPasswordToken,
		&account.ResetPasswordExpire,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// HashPassword derives the bcrypt hash stored at rest.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a plaintext presentation against the stored hash.
func ComparePassword(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
