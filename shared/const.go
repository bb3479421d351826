package shared

const (
	AdminSubject = "admin_subject"

	UnknownClientIP = "unknown"

	DocumentVisits        = "visits"
	DocumentFailedLogins  = "failed_logins"
	DocumentConversations = "conversations"

	RoleUser      = "user"
	RoleAssistant = "assistant"

	DateLayout = "2006-01-02"
)
