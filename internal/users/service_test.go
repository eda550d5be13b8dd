package users

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/db/models"
	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/security"
)

type stubRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User

	createCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubRepo) CreateIfAbsent(_ context.Context, dto CreateUserDTO) (*models.User, bool, error) {
	s.createCalls++
	if existing, ok := s.byEmail[dto.Email]; ok {
		return existing, false, nil
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, true, nil
}

func (s *stubRepo) UpdateFields(_ context.Context, id uuid.UUID, patch map[string]any) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if v, ok := patch["email"]; ok {
		delete(s.byEmail, user.Email)
		user.Email = v.(string)
		s.byEmail[user.Email] = user
	}
	if v, ok := patch["first_name"]; ok {
		user.FirstName = v.(string)
	}
	if v, ok := patch["last_name"]; ok {
		user.LastName = v.(string)
	}
	if v, ok := patch["phone_number"]; ok {
		user.PhoneNumber = v.(string)
	}
	if v, ok := patch["profile_picture_url"]; ok {
		user.ProfilePictureURL = v.(string)
	}
	return user, nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, user.Email)
	return user, nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:     8,
		ArgonTime:         1,
		ArgonParallelism:  1,
		ArgonSaltLen:      16,
		ArgonKeyLen:       32,
		ProvisionMemoryKB: 8,
		ProvisionTime:     1,
	}
}

func newTestService(repo repository) *Service {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(repo, testPasswordConfig(), logg)
}

func TestFindOrCreate_ProvisionsNewUser(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	user, created, err := svc.FindOrCreate(context.Background(), FindOrCreateInput{
		Email:             "  Ada@Example.COM ",
		FirstName:         "Ada",
		ProfilePictureURL: "https://cdn.example.com/ada.png",
	})
	if err != nil {
		t.Fatalf("find-or-create failed: %v", err)
	}
	if !created {
		t.Fatal("expected a new record")
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}

	stored := repo.byEmail["ada@example.com"]
	if stored == nil {
		t.Fatal("record not persisted")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", stored.PasswordHash)
	}
}

func TestFindOrCreate_ReturnsExistingWithoutNewCredential(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	in := FindOrCreateInput{
		Email:             "ada@example.com",
		FirstName:         "Ada",
		ProfilePictureURL: "https://cdn.example.com/ada.png",
	}

	first, _, err := svc.FindOrCreate(ctx, in)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	firstHash := repo.byEmail["ada@example.com"].PasswordHash

	second, created, err := svc.FindOrCreate(ctx, in)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if created {
		t.Fatal("expected existing record to be reused")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same record, got %s and %s", first.ID, second.ID)
	}
	if repo.byEmail["ada@example.com"].PasswordHash != firstHash {
		t.Fatal("existing credential must not be rotated")
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected 1 create attempt, got %d", repo.createCalls)
	}
}

func TestFindOrCreate_GeneratedCredentialVerifies(t *testing.T) {
	// The generated secret is discarded, but the stored hash must still be a
	// well-formed credential a future reset flow could replace.
	hash, err := security.HashPassword("whatever", testPasswordConfig().Provision())
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	ok, err := security.VerifyPassword("whatever", hash)
	if err != nil || !ok {
		t.Fatalf("expected provision-cost hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestGetByID_MapsNotFound(t *testing.T) {
	svc := newTestService(newStubRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdate_AppliesPartialPatch(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	user, _, err := svc.FindOrCreate(ctx, FindOrCreateInput{
		Email:             "grace@example.com",
		FirstName:         "Grace",
		LastName:          "Hopper",
		ProfilePictureURL: "https://cdn.example.com/grace.png",
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	phone := "+1-555-0100"
	updated, err := svc.Update(ctx, user.ID, UpdateInput{PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.PhoneNumber != phone {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.LastName != "Hopper" {
		t.Fatalf("untouched field changed: %+v", updated)
	}

	email := "Grace.Hopper@Example.com"
	updated, err = svc.Update(ctx, user.ID, UpdateInput{Email: &email})
	if err != nil {
		t.Fatalf("email update failed: %v", err)
	}
	if updated.Email != "grace.hopper@example.com" {
		t.Fatalf("expected normalized email, got %q", updated.Email)
	}

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{PhoneNumber: &phone})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDelete_ReturnsRecordAndMapsNotFound(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	user, _, err := svc.FindOrCreate(ctx, FindOrCreateInput{
		Email:             "joan@example.com",
		FirstName:         "Joan",
		ProfilePictureURL: "https://cdn.example.com/joan.png",
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	deleted, err := svc.Delete(ctx, user.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.Email != "joan@example.com" {
		t.Fatalf("unexpected record: %+v", deleted)
	}

	_, err = svc.Delete(ctx, user.ID)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
