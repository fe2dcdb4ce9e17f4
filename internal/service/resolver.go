package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"go.uber.org/zap"
)

var ErrInvalidRecipientSpec = errors.New("invalid recipient specification")

// RecipientSpec is either an explicit id list or a symbolic group, optionally
// scoped to one branch ("all parents of branch X").
type RecipientSpec struct {
	UserIDs  []uint `json:"user_ids,omitempty"`
	Group    string `json:"group,omitempty"`
	BranchID *uint  `json:"branch_id,omitempty"`
}

// ResolvedRecipient is a concrete deliverable user with their preference
// attached so the orchestrator does not re-fetch it per channel.
type ResolvedRecipient struct {
	UserID     uint
	Name       string
	Role       string
	Email      string
	Phone      string
	BranchID   uint
	Preference *models.NotificationPreference
}

// UserDirectory is the user lookup the resolver depends on; the gorm
// UserRepository satisfies it.
type UserDirectory interface {
	GetByIDs(ids []uint, branchID *uint) ([]models.User, error)
	ListByRoles(roles []string, branchID *uint) ([]models.User, error)
}

// PreferenceReader must apply the all-enabled default when a user has no
// stored record.
type PreferenceReader interface {
	GetOrDefault(userID uint) (*models.NotificationPreference, error)
}

// Resolver expands a recipient specification into concrete users, dropping
// anyone whose preferences opt out of the notification's category. An empty
// result is a normal outcome, not an error.
type Resolver struct {
	users UserDirectory
	prefs PreferenceReader
	log   *zap.Logger
	now   func() time.Time
}

func NewResolver(users UserDirectory, prefs PreferenceReader, log *zap.Logger) *Resolver {
	return &Resolver{users: users, prefs: prefs, log: log, now: time.Now}
}

func (r *Resolver) Resolve(spec RecipientSpec, category, priority string) ([]ResolvedRecipient, error) {
	var (
		users []models.User
		err   error
	)
	switch {
	case len(spec.UserIDs) > 0:
		// the branch scope binds explicit ids too, so a branch admin cannot
		// reach another branch's users by guessing ids
		users, err = r.users.GetByIDs(spec.UserIDs, spec.BranchID)
	case spec.Group != "":
		roles, ok := groupRoles(spec.Group)
		if !ok {
			return nil, fmt.Errorf("%w: unknown group %q", ErrInvalidRecipientSpec, spec.Group)
		}
		users, err = r.users.ListByRoles(roles, spec.BranchID)
	default:
		return nil, fmt.Errorf("%w: neither user ids nor group given", ErrInvalidRecipientSpec)
	}
	if err != nil {
		return nil, fmt.Errorf("expand recipients: %w", err)
	}

	seen := make(map[uint]struct{}, len(users))
	out := make([]ResolvedRecipient, 0, len(users))
	for i := range users {
		u := &users[i]
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}

		pref, err := r.prefs.GetOrDefault(u.ID)
		if err != nil {
			// a broken preference row must not silence the user
			r.log.Warn("preference lookup failed, using defaults",
				zap.Uint("user_id", u.ID), zap.Error(err))
			pref = models.DefaultPreference(u.ID)
		}
		if !pref.AllowsCategory(category) {
			continue
		}
		if priority != domain.PriorityUrgent && pref.InQuietHours(r.now()) {
			continue
		}
		out = append(out, ResolvedRecipient{
			UserID:     u.ID,
			Name:       u.FullName,
			Role:       u.Role,
			Email:      u.Email,
			Phone:      u.Phone,
			BranchID:   u.BranchID,
			Preference: pref,
		})
	}
	return out, nil
}

// groupRoles maps a symbolic group to the role filter that expands it. A nil
// role list means no role restriction.
func groupRoles(group string) ([]string, bool) {
	switch group {
	case domain.GroupAll:
		return nil, true
	case domain.GroupStudents:
		return []string{domain.RoleStudent}, true
	case domain.GroupParents:
		return []string{domain.RoleParent}, true
	case domain.GroupTeachers:
		return []string{domain.RoleTeacher}, true
	case domain.GroupAdmins:
		return []string{domain.RoleAdmin, domain.RoleSuperadmin}, true
	}
	return nil, false
}
