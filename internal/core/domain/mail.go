package domain

// Mail is an outgoing message to a member.
type Mail struct {
	To      string
	Subject string
	Body    string
}
