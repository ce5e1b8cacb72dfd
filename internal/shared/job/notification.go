package job

// Job names shared by the modules that enqueue and process them.
const (
	ScheduleJobsAt         string = "ScheduleJobsAt"
	SendMailError          string = "SendMailError"
	SendMailJobError       string = "SendMailJobError"
	SendMailForgotPassword string = "SendMailForgotPassword"
	SendSmsForgotPassword  string = "SendSmsForgotPassword"
)

// Notification is the payload of every notification job.
type Notification[T any] struct {
	// To is the destination address or phone; empty means no destination.
	To   string `json:"to"`
	From string `json:"from"`
	Data T      `json:"data"`
}

// ErrorData describes a failure reported to support.
type ErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	// Job is set when the failure happened inside a job.
	Job string `json:"job,omitempty"`
}

// ForgotPasswordData carries what a password reset message needs.
type ForgotPasswordData struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Token    string `json:"token"`
}
