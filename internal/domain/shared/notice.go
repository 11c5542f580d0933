package shared

// NoticeVariant controls how a transient notification is presented
type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeWarning     NoticeVariant = "warning"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a transient user-facing notification surfaced after an action
type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Variant     NoticeVariant `json:"variant"`
}

// SuccessNotice creates a default-variant notice titled "Success"
func SuccessNotice(description string) Notice {
	return Notice{Title: "Success", Description: description, Variant: NoticeDefault}
}

// ErrorNotice creates a destructive notice titled "Error"
func ErrorNotice(description string) Notice {
	return Notice{Title: "Error", Description: description, Variant: NoticeDestructive}
}

// WarningNotice creates a warning notice
func WarningNotice(title, description string) Notice {
	return Notice{Title: title, Description: description, Variant: NoticeWarning}
}
