package service

import (
	"errors"
	"testing"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	byID    []models.User
	byRoles []models.User

	gotIDs    []uint
	gotBranch *uint
	gotRoles  []string
	err       error
}

func (f *fakeDirectory) GetByIDs(ids []uint, branchID *uint) ([]models.User, error) {
	f.gotIDs = ids
	f.gotBranch = branchID
	if branchID == nil {
		return f.byID, f.err
	}
	var out []models.User
	for _, u := range f.byID {
		if u.BranchID == *branchID {
			out = append(out, u)
		}
	}
	return out, f.err
}

func (f *fakeDirectory) ListByRoles(roles []string, branchID *uint) ([]models.User, error) {
	f.gotRoles = roles
	return f.byRoles, f.err
}

type fakePrefs struct {
	prefs map[uint]*models.NotificationPreference
	err   error
}

func (f *fakePrefs) GetOrDefault(userID uint) (*models.NotificationPreference, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return models.DefaultPreference(userID), nil
}

func user(id uint, role string) models.User {
	return models.User{
		ID:       id,
		FullName: "User",
		Role:     role,
		Email:    "u@example.com",
		IsActive: true,
	}
}

func newTestResolver(dir *fakeDirectory, prefs *fakePrefs) *Resolver {
	r := NewResolver(dir, prefs, zap.NewNop())
	r.now = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestResolver_ExplicitIDs(t *testing.T) {
	dir := &fakeDirectory{byID: []models.User{user(1, domain.RoleStudent), user(2, domain.RoleParent)}}
	r := newTestResolver(dir, &fakePrefs{})

	got, err := r.Resolve(RecipientSpec{UserIDs: []uint{1, 2}}, domain.CategoryAcademic, domain.PriorityNormal)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []uint{1, 2}, dir.gotIDs)
	assert.NotNil(t, got[0].Preference)
}

func TestResolver_ExplicitIDsStayWithinBranch(t *testing.T) {
	local := user(1, domain.RoleStudent)
	local.BranchID = 10
	foreign := user(2, domain.RoleStudent)
	foreign.BranchID = 20

	dir := &fakeDirectory{byID: []models.User{local, foreign}}
	r := newTestResolver(dir, &fakePrefs{})

	branch := uint(10)
	got, err := r.Resolve(RecipientSpec{UserIDs: []uint{1, 2}, BranchID: &branch},
		domain.CategoryAcademic, domain.PriorityNormal)
	require.NoError(t, err)
	require.NotNil(t, dir.gotBranch)
	assert.Equal(t, branch, *dir.gotBranch)
	require.Len(t, got, 1, "the other branch's user is dropped")
	assert.Equal(t, uint(1), got[0].UserID)
}

func TestResolver_Deduplicates(t *testing.T) {
	// a user can appear twice when the directory expands overlapping sources
	dir := &fakeDirectory{byID: []models.User{user(7, domain.RoleParent), user(7, domain.RoleParent)}}
	r := newTestResolver(dir, &fakePrefs{})

	got, err := r.Resolve(RecipientSpec{UserIDs: []uint{7, 7}}, domain.CategoryFinance, domain.PriorityNormal)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolver_Groups(t *testing.T) {
	tests := []struct {
		group     string
		wantRoles []string
	}{
		{domain.GroupAll, nil},
		{domain.GroupStudents, []string{domain.RoleStudent}},
		{domain.GroupParents, []string{domain.RoleParent}},
		{domain.GroupTeachers, []string{domain.RoleTeacher}},
		{domain.GroupAdmins, []string{domain.RoleAdmin, domain.RoleSuperadmin}},
	}
	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			dir := &fakeDirectory{byRoles: []models.User{user(1, domain.RoleStudent)}}
			r := newTestResolver(dir, &fakePrefs{})
			_, err := r.Resolve(RecipientSpec{Group: tt.group}, domain.CategorySystem, domain.PriorityNormal)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoles, dir.gotRoles)
		})
	}
}

func TestResolver_InvalidSpec(t *testing.T) {
	r := newTestResolver(&fakeDirectory{}, &fakePrefs{})

	_, err := r.Resolve(RecipientSpec{}, domain.CategorySystem, domain.PriorityNormal)
	assert.ErrorIs(t, err, ErrInvalidRecipientSpec)

	_, err = r.Resolve(RecipientSpec{Group: "aliens"}, domain.CategorySystem, domain.PriorityNormal)
	assert.ErrorIs(t, err, ErrInvalidRecipientSpec)
}

func TestResolver_CategoryOptOut(t *testing.T) {
	optedOut := models.DefaultPreference(1)
	optedOut.SetCategories(map[string]bool{domain.CategoryFinance: false})

	dir := &fakeDirectory{byID: []models.User{user(1, domain.RoleParent), user(2, domain.RoleParent)}}
	prefs := &fakePrefs{prefs: map[uint]*models.NotificationPreference{1: optedOut}}
	r := newTestResolver(dir, prefs)

	got, err := r.Resolve(RecipientSpec{UserIDs: []uint{1, 2}}, domain.CategoryFinance, domain.PriorityNormal)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].UserID)

	// the same user still receives other categories
	got, err = r.Resolve(RecipientSpec{UserIDs: []uint{1, 2}}, domain.CategoryAcademic, domain.PriorityNormal)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestResolver_AllOptedOutIsEmptyNotError(t *testing.T) {
	p := models.DefaultPreference(1)
	p.SetCategories(map[string]bool{domain.CategoryAnnouncement: false})

	dir := &fakeDirectory{byID: []models.User{user(1, domain.RoleStudent)}}
	r := newTestResolver(dir, &fakePrefs{prefs: map[uint]*models.NotificationPreference{1: p}})

	got, err := r.Resolve(RecipientSpec{UserIDs: []uint{1}}, domain.CategoryAnnouncement, domain.PriorityNormal)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolver_PreferenceFailureFallsBackToDefaults(t *testing.T) {
	dir := &fakeDirectory{byID: []models.User{user(3, domain.RoleTeacher)}}
	r := newTestResolver(dir, &fakePrefs{err: errors.New("row corrupt")})

	got, err := r.Resolve(RecipientSpec{UserIDs: []uint{3}}, domain.CategoryExam, domain.PriorityNormal)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Preference.AllowsChannel(domain.ChannelEmail))
}

func TestResolver_QuietHours(t *testing.T) {
	quiet := models.DefaultPreference(1)
	quiet.QuietHoursStart = "08:00"
	quiet.QuietHoursEnd = "18:00" // covers the fixed noon clock

	dir := &fakeDirectory{byID: []models.User{user(1, domain.RoleParent)}}
	r := newTestResolver(dir, &fakePrefs{prefs: map[uint]*models.NotificationPreference{1: quiet}})

	got, err := r.Resolve(RecipientSpec{UserIDs: []uint{1}}, domain.CategoryAttendance, domain.PriorityNormal)
	require.NoError(t, err)
	assert.Empty(t, got, "non-urgent messages respect quiet hours")

	got, err = r.Resolve(RecipientSpec{UserIDs: []uint{1}}, domain.CategoryAttendance, domain.PriorityUrgent)
	require.NoError(t, err)
	assert.Len(t, got, 1, "urgent messages bypass quiet hours")
}
