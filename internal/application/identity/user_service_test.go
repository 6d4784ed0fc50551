package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an admin account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo)

		repo.On("ExistsByEmail", ctx, "admin@example.com").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		info, err := svc.Create(ctx, CreateUserInput{
			Name:     "Store Admin",
			Email:    "admin@example.com",
			Password: "correct-horse",
			Role:     "admin",
		})

		require.NoError(t, err)
		assert.Equal(t, "admin", info.Role)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo)

		repo.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)

		info, err := svc.Create(ctx, CreateUserInput{
			Name:     "Someone",
			Email:    "taken@example.com",
			Password: "correct-horse",
			Role:     "user",
		})

		assert.Nil(t, info)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes a user to admin", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo)

		user, err := identity.NewUser("Shopper", "shopper@example.com", "correct-horse")
		require.NoError(t, err)

		repo.On("FindByID", ctx, user.ID).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		info, err := svc.Update(ctx, user.ID, UpdateUserInput{
			Name:  "Shopper",
			Email: "shopper@example.com",
			Role:  "admin",
		})

		require.NoError(t, err)
		assert.Equal(t, "admin", info.Role)
		repo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})

	t.Run("changing email checks for duplicates", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo)

		user, err := identity.NewUser("Shopper", "shopper@example.com", "correct-horse")
		require.NoError(t, err)

		repo.On("FindByID", ctx, user.ID).Return(user, nil)
		repo.On("ExistsByEmail", ctx, "other@example.com").Return(true, nil)

		info, err := svc.Update(ctx, user.ID, UpdateUserInput{
			Name:  "Shopper",
			Email: "other@example.com",
			Role:  "user",
		})

		assert.Nil(t, info)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes another account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo)

		target := uuid.New()
		actor := uuid.New()
		repo.On("Delete", ctx, target).Return(nil)

		require.NoError(t, svc.Delete(ctx, target, actor))
		repo.AssertExpectations(t)
	})

	t.Run("refuses self-deletion", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(repo)

		actor := uuid.New()
		err := svc.Delete(ctx, actor, actor)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
