package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
	"golang.org/x/crypto/bcrypt"
)

type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MinPasswordLen is enforced when passwords are set.
const MinPasswordLen = 8

// HashPassword returns a bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a candidate password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, a Admin) (Admin, error) {
	a.ID = uuid.NewString()
	a.Email = NormalizeEmail(a.Email)
	err := r.DB.QueryRow(ctx, `
		INSERT INTO admins (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, a.ID, a.Email, a.Name, a.PasswordHash).Scan(&a.CreatedAt)
	if err != nil {
		return Admin{}, postgres.Translate(err, "admin")
	}
	return a, nil
}

func (r *Repo) SetPassword(ctx context.Context, email, hash string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE admins SET password_hash=$2, updated_at=now() WHERE email=$1`, NormalizeEmail(email), hash)
	if err != nil {
		return postgres.Translate(err, "admin")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "admin")
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at FROM admins WHERE email=$1`,
		NormalizeEmail(email)).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	return a, postgres.Translate(err, "admin")
}
