package domain

const (
	RoleStudent    = "STUDENT"
	RoleParent     = "PARENT"
	RoleTeacher    = "TEACHER"
	RoleAdmin      = "ADMIN"
	RoleSuperadmin = "SUPERADMIN"
)

const (
	ChannelInApp = "IN_APP"
	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
	ChannelPush  = "PUSH"
)

// AllChannels in delivery-preference order; in-app first because it is the
// only synchronous channel.
var AllChannels = []string{ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush}

const (
	CategoryAcademic     = "ACADEMIC"
	CategoryAttendance   = "ATTENDANCE"
	CategoryExam         = "EXAM"
	CategoryFinance      = "FINANCE"
	CategoryEnrollment   = "ENROLLMENT"
	CategoryAnnouncement = "ANNOUNCEMENT"
	CategorySystem       = "SYSTEM"
)

const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Per-recipient, per-channel delivery status. NOT_APPLICABLE means the channel
// was never selected for that recipient.
const (
	DeliveryNotApplicable = "NOT_APPLICABLE"
	DeliveryScheduled     = "SCHEDULED"
	DeliverySent          = "SENT"
	DeliveryDelivered     = "DELIVERED"
	DeliveryRead          = "READ"
	DeliveryFailed        = "FAILED"
)

const (
	JobScheduled = "SCHEDULED"
	JobDelivered = "DELIVERED"
	JobFailed    = "FAILED"
	JobCancelled = "CANCELLED"
)

const (
	NotificationScheduled = "SCHEDULED"
	NotificationSent      = "SENT"
)

// Symbolic recipient groups expanded by the resolver.
const (
	GroupAll      = "all"
	GroupStudents = "students"
	GroupParents  = "parents"
	GroupTeachers = "teachers"
	GroupAdmins   = "admins"
)

func IsChannel(s string) bool {
	switch s {
	case ChannelInApp, ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

func IsGroup(s string) bool {
	switch s {
	case GroupAll, GroupStudents, GroupParents, GroupTeachers, GroupAdmins:
		return true
	}
	return false
}
