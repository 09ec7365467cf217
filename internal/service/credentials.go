package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/repository"
)

// CredentialRepository defines the credential persistence operations.
type CredentialRepository interface {
	DivisionResolver
	VisibleDivisionIDs(ctx context.Context, userID string, scope repository.Scope) ([]string, error)
	Tree(ctx context.Context, divisionIDs []string) (models.CredentialTree, error)
	AddAccount(ctx context.Context, divisionID string, a models.Account) error
	UpdateAccount(ctx context.Context, divisionID string, old, updated models.Account) error
}

// CredentialService serves and edits the credential tree within the
// caller's visibility.
type CredentialService struct {
	repo CredentialRepository
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(repo CredentialRepository) *CredentialService {
	return &CredentialService{repo: repo}
}

// Tree returns every unit, division and account the caller can see.
func (s *CredentialService) Tree(ctx context.Context, actor models.User) (models.CredentialTree, error) {
	ids, err := s.repo.VisibleDivisionIDs(ctx, actor.ID, scopeFor(actor.Role))
	if err != nil {
		return nil, fmt.Errorf("visible divisions: %w", err)
	}
	tree, err := s.repo.Tree(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("credential tree: %w", err)
	}
	return tree, nil
}

// Add stores a new account in a division the caller can see.
func (s *CredentialService) Add(ctx context.Context, actor models.User, req models.AddCredentialRequest) (string, error) {
	divisionID, err := s.visibleDivision(ctx, actor, req.OrganisationalUnit, req.Division)
	if err != nil {
		return "", err
	}

	err = s.repo.AddAccount(ctx, divisionID, models.Account{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return "", fmt.Errorf("add credential: %w", err)
	}
	return MsgCredentialAdded, nil
}

// Update rewrites the account matching the old triple. Only management
// and admin users may update.
func (s *CredentialService) Update(ctx context.Context, actor models.User, req models.UpdateCredentialRequest) (string, error) {
	if !canUpdateCredentials(actor.Role) {
		return "", fail(ErrForbidden, MsgCannotUpdate)
	}
	divisionID, err := s.visibleDivision(ctx, actor, req.OrganisationalUnit, req.Division)
	if err != nil {
		return "", err
	}

	old := models.Account{Name: req.OldName, Username: req.OldUsername, Password: req.OldPassword}
	updated := models.Account{Name: req.NewName, Username: req.NewUsername, Password: req.NewPassword}
	err = s.repo.UpdateAccount(ctx, divisionID, old, updated)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fail(ErrNotFound, MsgCredentialNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("update credential: %w", err)
	}
	return MsgCredentialUpdated, nil
}

func (s *CredentialService) visibleDivision(ctx context.Context, actor models.User, orgUnit, division string) (string, error) {
	divisionID, err := s.repo.DivisionID(ctx, orgUnit, division)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fail(ErrNotFound, MsgDivisionNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("resolve division: %w", err)
	}

	ids, err := s.repo.VisibleDivisionIDs(ctx, actor.ID, scopeFor(actor.Role))
	if err != nil {
		return "", fmt.Errorf("visible divisions: %w", err)
	}
	if !slices.Contains(ids, divisionID) {
		return "", fail(ErrForbidden, MsgNoDivisionAccess)
	}
	return divisionID, nil
}
