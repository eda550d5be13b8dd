package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/db"
	"github.com/newswirehq/newswire-backend/pkg/db/models"
)

var testDBSeq int

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:users_test_%d?mode=memory&cache=shared", testDBSeq)
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewRepo(client)
}

func sampleCreateDTO(email string) CreateUserDTO {
	return CreateUserDTO{
		Email:             email,
		PasswordHash:      "$argon2id$v=19$m=8,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		ProfilePictureURL: "https://cdn.example.com/ada.png",
	}
}

func TestCreateIfAbsent_InsertsAndDeduplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, created, err := repo.CreateIfAbsent(ctx, sampleCreateDTO("ada@example.com"))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create a record")
	}
	if first.ID == uuid.Nil {
		t.Fatal("expected an assigned id")
	}
	if got := []string(first.Roles); len(got) != 1 || got[0] != models.RoleUser {
		t.Fatalf("unexpected roles: %v", got)
	}

	second, created, err := repo.CreateIfAbsent(ctx, sampleCreateDTO("ada@example.com"))
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if created {
		t.Fatal("expected second call to reuse the existing record")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same record, got %s and %s", first.ID, second.ID)
	}
}

func TestCreateIfAbsent_ConcurrentCallersConvergeOnOneRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const callers = 8
	ids := make(chan uuid.UUID, callers)
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, _, err := repo.CreateIfAbsent(ctx, sampleCreateDTO("race@example.com"))
			if err != nil {
				errs <- err
				return
			}
			ids <- user.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create failed: %v", err)
	}

	var winner uuid.UUID
	for id := range ids {
		if winner == uuid.Nil {
			winner = id
			continue
		}
		if id != winner {
			t.Fatalf("callers got different records: %s and %s", winner, id)
		}
	}

	var count int64
	if err := repo.client.DB().Model(&models.User{}).Where("email = ?", "race@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one record, got %d", count)
	}
}

func TestFindByEmailAndID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, _, err := repo.CreateIfAbsent(ctx, sampleCreateDTO("grace@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byEmail, err := repo.FindByEmail(ctx, "grace@example.com")
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, byEmail.ID)
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if byID.Email != "grace@example.com" {
		t.Fatalf("unexpected email: %s", byID.Email)
	}

	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}

func TestUpdateFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, _, err := repo.CreateIfAbsent(ctx, sampleCreateDTO("joan@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.UpdateFields(ctx, created.ID, map[string]any{
		"first_name":   "Joan",
		"phone_number": "+1-555-0100",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.FirstName != "Joan" || updated.PhoneNumber != "+1-555-0100" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.LastName != "Lovelace" {
		t.Fatalf("untouched field changed: %s", updated.LastName)
	}

	// Empty patch is a read.
	same, err := repo.UpdateFields(ctx, created.ID, nil)
	if err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	if same.FirstName != "Joan" {
		t.Fatalf("unexpected record: %+v", same)
	}

	if _, err := repo.UpdateFields(ctx, uuid.New(), map[string]any{"first_name": "x"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}

func TestDelete_ReturnsPriorRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, _, err := repo.CreateIfAbsent(ctx, sampleCreateDTO("mary@example.com"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted, err := repo.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.Email != "mary@example.com" {
		t.Fatalf("unexpected deleted record: %+v", deleted)
	}

	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}

	if _, err := repo.Delete(ctx, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found on double delete, got %v", err)
	}
}
