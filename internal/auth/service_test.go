package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/adebayoakin/gearmart-backend/pkg/auth"
	"github.com/adebayoakin/gearmart-backend/pkg/config"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	pkgerrors "github.com/adebayoakin/gearmart-backend/pkg/errors"
	"github.com/adebayoakin/gearmart-backend/pkg/security"
)

type fakeUsersRepo struct {
	byEmail map[string]*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return nil, gorm.ErrDuplicatedKey
	}
	user.ID = uuid.New()
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	return config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "gearmart",
			ExpirationMinutes: 60,
		}, config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		}
}

func authFixture(t *testing.T) (Service, *fakeUsersRepo) {
	t.Helper()
	repo := &fakeUsersRepo{byEmail: map[string]*models.User{}}
	jwtCfg, passwordCfg := testConfigs()
	svc, err := NewService(repo, jwtCfg, passwordCfg, func() time.Time {
		return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)
	return svc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := authFixture(t)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{
		Name:     "Ada Obi",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	require.Equal(t, "ada@example.com", session.User.Email)
	require.False(t, session.User.IsAdmin)

	jwtCfg, _ := testConfigs()
	claims, err := pkgauth.ParseAccessToken(jwtCfg, session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, claims.UserID)

	login, err := svc.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, session.User.ID, login.User.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, repo := authFixture(t)
	ctx := context.Background()

	_, passwordCfg := testConfigs()
	hash, err := security.HashPassword("right-password", passwordCfg)
	require.NoError(t, err)
	repo.byEmail["ada@example.com"] = &models.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: hash,
	}

	_, wrongPassword := svc.Login(ctx, "ada@example.com", "wrong-password")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "whatever")

	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(wrongPassword).Code())
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(unknownEmail).Code())
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := authFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "not-an-email", Password: "long-enough"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "short"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
