package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/storage"
)

func TestWeekAnchor(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midweek",
			in:   time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday midnight is its own anchor",
			in:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday evening",
			in:   time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday rolls back six days",
			in:   time.Date(2025, 3, 8, 1, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekAnchor(tt.in))
		})
	}
}

func TestWeekAnchor_ConsecutiveWeeksTile(t *testing.T) {
	anchor := weekAnchor(time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC))
	for week := 0; week < 4; week++ {
		start := anchor.AddDate(0, 0, -7*week)
		end := start.AddDate(0, 0, 7)
		assert.Equal(t, 7*24*time.Hour, end.Sub(start))
		if week > 0 {
			prevStart := anchor.AddDate(0, 0, -7*(week-1))
			assert.Equal(t, prevStart, end, "week %d must end where week %d starts", week, week-1)
		}
	}
}

// fakeUserRepo overrides only the methods participant derivation needs.
type fakeUserRepo struct {
	repositories.UserRepository
	admins []*models.User
}

func (f *fakeUserRepo) GetByRole(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.User, error) {
	if role == models.RoleSystemAdmin {
		return f.admins, nil
	}
	return nil, nil
}

type fakeRepo struct {
	repositories.Repository
	users *fakeUserRepo
}

func (f *fakeRepo) User() repositories.UserRepository { return f.users }

func TestDeriveParticipants(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	admins := []*models.User{
		{ID: 4, Name: "D", Role: models.RoleSystemAdmin},
		{ID: 5, Name: "E", Role: models.RoleSystemAdmin},
	}
	repo := &fakeRepo{users: &fakeUserRepo{admins: admins}}

	svc := &chatService{repo: repo, logger: logger}

	order := &models.WorkOrder{
		ID:        7,
		CreatedBy: 2,
		Mechanics: []models.User{
			{ID: 1, Name: "A", Role: models.RoleTechnician},
			{ID: 3, Name: "C", Role: models.RoleTechnician},
		},
		ShopManagers: []models.User{
			{ID: 2, Name: "B", Role: models.RoleShopManager},
		},
		Creator: models.User{ID: 2, Name: "B", Role: models.RoleShopManager},
	}
	initiator := &models.User{ID: 6, Name: "F", Role: models.RoleShopManager}

	participants, err := svc.deriveParticipants(context.Background(), order, initiator)
	require.NoError(t, err)

	ids := make([]uint, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}

	// Mechanics, the creator/manager (deduplicated), both admins and the
	// initiator: six distinct members.
	assert.ElementsMatch(t, []uint{1, 2, 3, 4, 5, 6}, ids)
	assert.Len(t, participants, 6)
}

func TestDeriveParticipants_InitiatorAlreadyStaffed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := &fakeRepo{users: &fakeUserRepo{}}
	svc := &chatService{repo: repo, logger: logger}

	order := &models.WorkOrder{
		ID:        8,
		CreatedBy: 1,
		Mechanics: []models.User{{ID: 2, Role: models.RoleTechnician}},
		Creator:   models.User{ID: 1, Role: models.RoleShopManager},
	}
	initiator := &models.User{ID: 2, Role: models.RoleTechnician}

	participants, err := svc.deriveParticipants(context.Background(), order, initiator)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestBuildMessageResponse(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := storage.NewMockStorage()
	svc := &chatService{storage: store, logger: logger}

	text := "brake pads arrived"
	audio := "chat/audio/1-note.m4a"
	message := &models.Message{
		ID:         3,
		ChatRoomID: 1,
		SenderID:   2,
		Sender:     models.User{ID: 2, Name: "Ana"},
		Text:       &text,
		ImageKeys:  []string{"chat/images/1-a.jpg", "chat/images/2-b.jpg"},
		FileKeys:   []string{"chat/files/1-invoice.pdf"},
		FileNames:  []string{"invoice.pdf"},
		AudioKey:   &audio,
		CreatedAt:  time.Now(),
	}

	resp := svc.buildMessageResponse(context.Background(), message)

	assert.Equal(t, "Ana", resp.SenderName)
	require.NotNil(t, resp.Text)
	assert.Equal(t, text, *resp.Text)
	assert.Len(t, resp.ImageURLs, 2)
	assert.Contains(t, resp.ImageURLs[0], "chat/images/1-a.jpg")
	assert.Equal(t, []string{"invoice.pdf"}, resp.FileNames)
	require.NotNil(t, resp.AudioURL)
	assert.Contains(t, *resp.AudioURL, audio)
}

func TestBuildMessageResponse_DeletedSuppressesContent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := &chatService{storage: storage.NewMockStorage(), logger: logger}

	text := "should not leak"
	message := &models.Message{
		ID:        4,
		SenderID:  2,
		Sender:    models.User{ID: 2, Name: "Ana"},
		Text:      &text,
		ImageKeys: []string{"chat/images/3-c.jpg"},
		IsDeleted: true,
	}

	resp := svc.buildMessageResponse(context.Background(), message)

	assert.True(t, resp.IsDeleted)
	assert.Nil(t, resp.Text)
	assert.Empty(t, resp.ImageURLs)
	assert.Nil(t, resp.AudioURL)
}
