package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type SchedulePublishedMailData struct {
	WeekStart    string `json:"weekStart"`
	ScheduleType string `json:"scheduleType"`
	PublishedBy  string `json:"publishedBy"`
}

type CreateOperatorMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}
