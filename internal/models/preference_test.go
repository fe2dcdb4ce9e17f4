package models

import (
	"testing"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPreference_EverythingEnabled(t *testing.T) {
	p := DefaultPreference(1)
	for _, ch := range domain.AllChannels {
		assert.True(t, p.AllowsChannel(ch), ch)
	}
	assert.True(t, p.AllowsCategory(domain.CategoryFinance))
	assert.False(t, p.InQuietHours(time.Now()))
}

func TestPreference_AllowsCategory(t *testing.T) {
	p := DefaultPreference(1)
	p.SetCategories(map[string]bool{
		domain.CategoryFinance:    false,
		domain.CategoryAttendance: true,
	})

	assert.False(t, p.AllowsCategory(domain.CategoryFinance))
	assert.True(t, p.AllowsCategory(domain.CategoryAttendance))
	assert.True(t, p.AllowsCategory(domain.CategoryExam), "missing key means enabled")

	p.Categories = "not json"
	assert.True(t, p.AllowsCategory(domain.CategoryFinance), "corrupt data fails open")
}

func TestPreference_UnknownChannelDenied(t *testing.T) {
	p := DefaultPreference(1)
	assert.False(t, p.AllowsChannel("FAX"))
}

func TestPreference_InQuietHours(t *testing.T) {
	at := func(hhmm string) time.Time {
		tm, _ := time.Parse("15:04", hhmm)
		return time.Date(2025, 3, 14, tm.Hour(), tm.Minute(), 0, 0, time.UTC)
	}
	tests := []struct {
		name       string
		start, end string
		clock      string
		want       bool
	}{
		{"inside simple window", "13:00", "15:00", "14:00", true},
		{"outside simple window", "13:00", "15:00", "16:00", false},
		{"start boundary inclusive", "13:00", "15:00", "13:00", true},
		{"end boundary exclusive", "13:00", "15:00", "15:00", false},
		{"wraps midnight, late evening", "22:00", "07:00", "23:30", true},
		{"wraps midnight, early morning", "22:00", "07:00", "06:00", true},
		{"wraps midnight, daytime", "22:00", "07:00", "12:00", false},
		{"unset window never quiet", "", "", "03:00", false},
		{"malformed window never quiet", "25:99", "07:00", "03:00", false},
		{"zero-length window never quiet", "08:00", "08:00", "08:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPreference(1)
			p.QuietHoursStart = tt.start
			p.QuietHoursEnd = tt.end
			assert.Equal(t, tt.want, p.InQuietHours(at(tt.clock)))
		})
	}
}
