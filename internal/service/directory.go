package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/repository"
)

// DivisionResolver maps unit and division names to a division id.
type DivisionResolver interface {
	DivisionID(ctx context.Context, orgUnit, division string) (string, error)
}

// DirectoryService serves the user directory and administers roles and
// division memberships.
type DirectoryService struct {
	users     UserRepository
	divisions DivisionResolver
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(users UserRepository, divisions DivisionResolver) *DirectoryService {
	return &DirectoryService{users: users, divisions: divisions}
}

// Profile returns the caller's own profile.
func (s *DirectoryService) Profile(ctx context.Context, actor models.User) (models.UserProfile, error) {
	p, err := s.users.Profile(ctx, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.UserProfile{}, fail(ErrUnauthorized, MsgUnauthorized)
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("profile: %w", err)
	}
	return p, nil
}

// Users lists every registered user. Any authenticated caller may read it.
func (s *DirectoryService) Users(ctx context.Context, _ models.User) ([]models.UserProfile, error) {
	users, err := s.users.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	return users, nil
}

// ChangeRole sets the role of req.UserID. Only admins may do this; an
// admin may change its own role.
func (s *DirectoryService) ChangeRole(ctx context.Context, actor models.User, req models.ChangeRoleRequest) (string, error) {
	if !canChangeRoles(actor.Role) {
		return "", fail(ErrForbidden, MsgCannotChangeRole)
	}
	role, err := models.ParseRole(string(req.NewRole))
	if err != nil {
		return "", fail(ErrInvalid, MsgInvalidRole)
	}

	err = s.users.SetRole(ctx, req.UserID, role)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fail(ErrNotFound, MsgUserNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("change role: %w", err)
	}
	return MsgRoleUpdated, nil
}

// Assign adds the named division to req.UserID.
func (s *DirectoryService) Assign(ctx context.Context, actor models.User, req models.DivisionRequest) (string, error) {
	userID, divisionID, err := s.membershipTarget(ctx, actor, req)
	if err != nil {
		return "", err
	}

	err = s.users.AddMembership(ctx, userID, divisionID)
	if errors.Is(err, repository.ErrDuplicate) {
		return "", fail(ErrConflict, MsgAlreadyAssigned)
	}
	if err != nil {
		return "", fmt.Errorf("assign: %w", err)
	}
	return MsgAssigned, nil
}

// Unassign removes the named division from req.UserID.
func (s *DirectoryService) Unassign(ctx context.Context, actor models.User, req models.DivisionRequest) (string, error) {
	userID, divisionID, err := s.membershipTarget(ctx, actor, req)
	if err != nil {
		return "", err
	}

	err = s.users.RemoveMembership(ctx, userID, divisionID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fail(ErrNotFound, MsgNotAssigned)
	}
	if err != nil {
		return "", fmt.Errorf("unassign: %w", err)
	}
	return MsgUnassigned, nil
}

func (s *DirectoryService) membershipTarget(ctx context.Context, actor models.User, req models.DivisionRequest) (string, string, error) {
	if !canManageMemberships(actor.Role) {
		return "", "", fail(ErrForbidden, MsgCannotManageUsers)
	}

	target, err := s.users.UserByID(ctx, req.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", "", fail(ErrNotFound, MsgUserNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("load user: %w", err)
	}

	divisionID, err := s.divisions.DivisionID(ctx, req.OrganisationalUnit, req.Division)
	if errors.Is(err, repository.ErrNotFound) {
		return "", "", fail(ErrNotFound, MsgDivisionNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("resolve division: %w", err)
	}
	return target.ID, divisionID, nil
}
