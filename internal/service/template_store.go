package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/pkg/cache"

	"go.uber.org/zap"
)

var (
	ErrTemplateNotFound      = errors.New("template not found")
	ErrDuplicateTemplateCode = errors.New("template code already in use")
	ErrProtectedTemplate     = errors.New("system templates cannot be modified")
)

// TemplateRepo is what the store needs from persistence; the gorm
// TemplateRepository satisfies it.
type TemplateRepo interface {
	Create(t *models.NotificationTemplate) error
	Save(t *models.NotificationTemplate) error
	GetByID(id uint) (*models.NotificationTemplate, error)
	GetByCode(code string) (*models.NotificationTemplate, error)
	ListActiveByCode(code string) ([]models.NotificationTemplate, error)
	ActiveCodeExists(code string) (bool, error)
	List(f repository.TemplateFilter) ([]models.NotificationTemplate, error)
	MarkUsed(id uint) error
}

// TemplateStore resolves templates by code with a bounded read cache in
// front. The cache is advisory: staleness up to its TTL is acceptable since
// templates change rarely and the database stays the source of truth.
type TemplateStore struct {
	repo  TemplateRepo
	cache *cache.Cache // nil disables caching
	log   *zap.Logger
}

func NewTemplateStore(repo TemplateRepo, c *cache.Cache, log *zap.Logger) *TemplateStore {
	return &TemplateStore{repo: repo, cache: c, log: log}
}

func templateCacheKey(code string, branchID uint) string {
	return fmt.Sprintf("tmpl:%s:%d", code, branchID)
}

// Get returns the first active template with the code that is global or
// scoped to the branch. branchID 0 means no branch restriction.
func (s *TemplateStore) Get(ctx context.Context, code string, branchID uint) (*models.NotificationTemplate, error) {
	key := templateCacheKey(code, branchID)
	var cached models.NotificationTemplate
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	list, err := s.repo.ListActiveByCode(code)
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", code, err)
	}
	for i := range list {
		if list[i].ScopedTo(branchID) {
			s.cache.Set(ctx, key, &list[i])
			return &list[i], nil
		}
	}
	return nil, ErrTemplateNotFound
}

// SeedDefaults idempotently installs the system catalog: missing codes are
// created, existing ones are refreshed to the catalog definition and forced
// global+active. Custom templates are never touched. Returns created and
// updated counts.
func (s *TemplateStore) SeedDefaults(ctx context.Context) (created, updated int, err error) {
	for _, def := range DefaultTemplates() {
		existing, err := s.repo.GetByCode(def.Code)
		if err != nil {
			return created, updated, fmt.Errorf("seed %s: %w", def.Code, err)
		}
		if existing == nil {
			t := def
			t.IsSystem = true
			t.IsActive = true
			t.BranchIDs = ""
			if err := s.repo.Create(&t); err != nil {
				return created, updated, fmt.Errorf("seed %s: %w", def.Code, err)
			}
			created++
			continue
		}
		// system seeds refresh only this fixed field set; usage counters and
		// timestamps survive re-seeding
		existing.Name = def.Name
		existing.TitleTemplate = def.TitleTemplate
		existing.BodyTemplate = def.BodyTemplate
		existing.Category = def.Category
		existing.DefaultPriority = def.DefaultPriority
		existing.DefaultChannels = def.DefaultChannels
		existing.Variables = def.Variables
		existing.IsSystem = true
		existing.IsActive = true
		existing.BranchIDs = ""
		if err := s.repo.Save(existing); err != nil {
			return created, updated, fmt.Errorf("seed %s: %w", def.Code, err)
		}
		updated++
		s.invalidate(ctx, existing)
	}
	s.log.Info("seeded default templates",
		zap.Int("created", created), zap.Int("updated", updated))
	return created, updated, nil
}

// CreateCustom adds a tenant-authored template. branchID 0 makes it global
// (superadmin only, enforced at the route).
func (s *TemplateStore) CreateCustom(t *models.NotificationTemplate, authorID, branchID uint) error {
	exists, err := s.repo.ActiveCodeExists(t.Code)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTemplateCode, t.Code)
	}
	t.IsSystem = false
	t.IsActive = true
	t.CreatedBy = authorID
	if branchID != 0 {
		t.SetBranchList([]uint{branchID})
	}
	return s.repo.Create(t)
}

// TemplatePatch carries the fields an admin may edit; nil means unchanged.
type TemplatePatch struct {
	Name            *string
	TitleTemplate   *string
	BodyTemplate    *string
	Category        *string
	DefaultPriority *string
	DefaultChannels []string
}

func (s *TemplateStore) Update(ctx context.Context, id uint, patch TemplatePatch) (*models.NotificationTemplate, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTemplateNotFound
	}
	if t.IsSystem {
		return nil, ErrProtectedTemplate
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.TitleTemplate != nil {
		t.TitleTemplate = *patch.TitleTemplate
	}
	if patch.BodyTemplate != nil {
		t.BodyTemplate = *patch.BodyTemplate
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.DefaultPriority != nil {
		t.DefaultPriority = *patch.DefaultPriority
	}
	if patch.DefaultChannels != nil {
		t.SetChannelList(patch.DefaultChannels)
	}
	if err := s.repo.Save(t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, t)
	return t, nil
}

// Deactivate soft-deletes a custom template. Templates are never hard-deleted.
func (s *TemplateStore) Deactivate(ctx context.Context, id uint) error {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTemplateNotFound
	}
	if t.IsSystem {
		return ErrProtectedTemplate
	}
	t.IsActive = false
	if err := s.repo.Save(t); err != nil {
		return err
	}
	s.invalidate(ctx, t)
	return nil
}

func (s *TemplateStore) List(f repository.TemplateFilter) ([]models.NotificationTemplate, error) {
	return s.repo.List(f)
}

func (s *TemplateStore) MarkUsed(id uint) error {
	return s.repo.MarkUsed(id)
}

// invalidate drops the cache entries we can name: the global key plus each
// scoped branch. Entries cached under other branch ids for a global template
// age out via TTL, which the design accepts.
func (s *TemplateStore) invalidate(ctx context.Context, t *models.NotificationTemplate) {
	keys := []string{templateCacheKey(t.Code, 0)}
	for _, id := range t.BranchList() {
		keys = append(keys, templateCacheKey(t.Code, id))
	}
	s.cache.Delete(ctx, keys...)
}
