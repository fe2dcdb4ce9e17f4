package service

import (
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"
)

// DefaultTemplates is the system template catalog installed by SeedDefaults.
// Codes are stable identifiers the rest of the application sends by.
func DefaultTemplates() []models.NotificationTemplate {
	return []models.NotificationTemplate{
		{
			Code:            "GRADE_PUBLISHED",
			Name:            "Grade published",
			TitleTemplate:   "New grade in {subject}",
			BodyTemplate:    "{student_name} received {grade} in {subject} ({exam_name}). Published on {current_date}.",
			Category:        domain.CategoryAcademic,
			DefaultPriority: domain.PriorityNormal,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelPush),
			Variables:       varsJSON("student_name", "subject", "grade", "exam_name"),
		},
		{
			Code:            "EXAM_SCHEDULED",
			Name:            "Exam scheduled",
			TitleTemplate:   "{subject} exam on {exam_date}",
			BodyTemplate:    "An exam for {subject} ({exam_name}) is scheduled on {exam_date} at {exam_time}.",
			Category:        domain.CategoryExam,
			DefaultPriority: domain.PriorityHigh,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelEmail, domain.ChannelPush),
			Variables:       varsJSON("subject", "exam_name", "exam_date", "exam_time"),
		},
		{
			Code:            "ATTENDANCE_ABSENT",
			Name:            "Student marked absent",
			TitleTemplate:   "Absence recorded for {student_name}",
			BodyTemplate:    "{student_name} was marked absent on {current_date}. Contact the school if this is unexpected.",
			Category:        domain.CategoryAttendance,
			DefaultPriority: domain.PriorityHigh,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelSMS, domain.ChannelPush),
			Variables:       varsJSON("student_name"),
		},
		{
			Code:            "FEE_DUE",
			Name:            "Fee payment due",
			TitleTemplate:   "Fee due: {amount}",
			BodyTemplate:    "A payment of {amount} for {student_name} is due by {due_date}. Fee: {fee_name}.",
			Category:        domain.CategoryFinance,
			DefaultPriority: domain.PriorityHigh,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelEmail, domain.ChannelSMS),
			Variables:       varsJSON("student_name", "amount", "due_date", "fee_name"),
		},
		{
			Code:            "PAYMENT_RECEIVED",
			Name:            "Payment received",
			TitleTemplate:   "Payment received: {amount}",
			BodyTemplate:    "We received {amount} for {student_name}. Receipt number {receipt_number}. Thank you.",
			Category:        domain.CategoryFinance,
			DefaultPriority: domain.PriorityNormal,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelEmail),
			Variables:       varsJSON("student_name", "amount", "receipt_number"),
		},
		{
			Code:            "ENROLLMENT_CONFIRMED",
			Name:            "Enrollment confirmed",
			TitleTemplate:   "Enrollment confirmed for {student_name}",
			BodyTemplate:    "{student_name} is enrolled in {class_name} for {academic_year}.",
			Category:        domain.CategoryEnrollment,
			DefaultPriority: domain.PriorityNormal,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelEmail),
			Variables:       varsJSON("student_name", "class_name", "academic_year"),
		},
		{
			Code:            "REPORT_CARD_READY",
			Name:            "Report card ready",
			TitleTemplate:   "Report card ready for {student_name}",
			BodyTemplate:    "The {term_name} report card for {student_name} is ready. Sent by {sender_name}.",
			Category:        domain.CategoryAcademic,
			DefaultPriority: domain.PriorityNormal,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelEmail, domain.ChannelPush),
			Variables:       varsJSON("student_name", "term_name"),
		},
		{
			Code:            "ANNOUNCEMENT",
			Name:            "General announcement",
			TitleTemplate:   "{announcement_title}",
			BodyTemplate:    "{announcement_body}",
			Category:        domain.CategoryAnnouncement,
			DefaultPriority: domain.PriorityNormal,
			DefaultChannels: channelsJSON(domain.ChannelInApp, domain.ChannelPush),
			Variables:       varsJSON("announcement_title", "announcement_body"),
		},
	}
}

func channelsJSON(channels ...string) string {
	return models.EncodeStringList(channels)
}

func varsJSON(vars ...string) string {
	return models.EncodeStringList(vars)
}
