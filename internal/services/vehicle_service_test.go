package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/macworldgithub/westside-backend/internal/models"
	"github.com/macworldgithub/westside-backend/internal/repositories"
	"github.com/macworldgithub/westside-backend/internal/storage"
	"github.com/macworldgithub/westside-backend/internal/validator"
)

type fakeVehicleRepo struct {
	repositories.VehicleRepository
	vehicles map[uint]*models.Vehicle
}

func (f *fakeVehicleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Vehicle, error) {
	vehicle, ok := f.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (f *fakeVehicleRepo) Update(ctx context.Context, tx *gorm.DB, vehicle *models.Vehicle) error {
	copied := *vehicle
	f.vehicles[vehicle.ID] = &copied
	return nil
}

type fakeVehicleRepoRoot struct {
	repositories.Repository
	vehicleRepo *fakeVehicleRepo
}

func (f *fakeVehicleRepoRoot) Vehicle() repositories.VehicleRepository {
	return f.vehicleRepo
}

func newVehicleServiceUnderTest(t *testing.T, vehicles ...*models.Vehicle) (*vehicleService, *storage.MockStorage, *fakeVehicleRepo) {
	t.Helper()

	byID := make(map[uint]*models.Vehicle, len(vehicles))
	for _, vehicle := range vehicles {
		byID[vehicle.ID] = vehicle
	}

	vehicleRepo := &fakeVehicleRepo{vehicles: byID}
	store := storage.NewMockStorage()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	svc := NewVehicleService(&fakeVehicleRepoRoot{vehicleRepo: vehicleRepo}, nil, logger, validator.New(), store).(*vehicleService)
	return svc, store, vehicleRepo
}

func TestVehicleUploadImageReplacesPrevious(t *testing.T) {
	ctx := context.Background()

	oldKey := "vehicles/images/old-photo.jpg"
	svc, store, repo := newVehicleServiceUnderTest(t, &models.Vehicle{
		ID:             3,
		Model:          "Corolla",
		Year:           2019,
		RegistrationNo: "ABC-123",
		ImageKey:       &oldKey,
	})
	require.NoError(t, store.Put(oldKey, []byte("old")))

	vehicle, err := svc.UploadImage(ctx, 3, &MediaUpload{
		Kind:        "image",
		Filename:    "front.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("new-photo"),
	}, 9)
	require.NoError(t, err)

	require.NotNil(t, vehicle.ImageKey)
	assert.Contains(t, *vehicle.ImageKey, storage.FolderVehicleImages)
	assert.NotEqual(t, oldKey, *vehicle.ImageKey)
	require.NotNil(t, vehicle.ImageURL)
	assert.Contains(t, *vehicle.ImageURL, *vehicle.ImageKey)

	// Replaced object is gone, new one is stored, and the row was saved.
	_, err = store.Download(ctx, oldKey)
	assert.Error(t, err)
	data, err := store.Download(ctx, *vehicle.ImageKey)
	require.NoError(t, err)
	assert.Equal(t, "new-photo", string(data))
	require.NotNil(t, repo.vehicles[3].ImageKey)
	assert.Equal(t, *vehicle.ImageKey, *repo.vehicles[3].ImageKey)
}

func TestVehicleUploadImageNotFound(t *testing.T) {
	svc, _, _ := newVehicleServiceUnderTest(t)

	_, err := svc.UploadImage(context.Background(), 404, &MediaUpload{
		Kind:     "image",
		Filename: "front.jpg",
		Body:     strings.NewReader("photo"),
	}, 9)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestVehicleDeleteImage(t *testing.T) {
	ctx := context.Background()

	key := "vehicles/images/photo.jpg"
	svc, store, repo := newVehicleServiceUnderTest(t, &models.Vehicle{
		ID:             5,
		Model:          "Hilux",
		Year:           2021,
		RegistrationNo: "XYZ-789",
		ImageKey:       &key,
	})
	require.NoError(t, store.Put(key, []byte("photo")))

	vehicle, err := svc.DeleteImage(ctx, 5, 9)
	require.NoError(t, err)
	assert.Nil(t, vehicle.ImageKey)
	assert.Nil(t, vehicle.ImageURL)
	assert.Nil(t, repo.vehicles[5].ImageKey)

	_, err = store.Download(ctx, key)
	assert.Error(t, err)
}

func TestVehicleDeleteImageWithoutImage(t *testing.T) {
	svc, _, _ := newVehicleServiceUnderTest(t, &models.Vehicle{
		ID:             6,
		Model:          "Civic",
		Year:           2018,
		RegistrationNo: "LMN-456",
	})

	_, err := svc.DeleteImage(context.Background(), 6, 9)
	assert.True(t, IsConflictError(err))
}
